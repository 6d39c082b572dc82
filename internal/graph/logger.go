package graph

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards every record. Enabled reports
// false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger shared by graph and the packages built on
// it (history, project, extract, editor). By default nothing is logged. Pass
// nil to restore the silent default.
//
// Levels used:
//   - [slog.LevelDebug]: pipeline stage sizes and timings
//   - [slog.LevelInfo]: path builds, project load/save
//   - [slog.LevelWarn]: defaulted snapshot fields, dropped history entries
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
