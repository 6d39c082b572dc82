// Package editor is the handle an operator drives: it owns the live point
// graph, its edit history and the machine settings, and exposes every edit
// as a method so callers never touch the graph directly.
package editor

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jbeda/geom"

	"pointpath/internal/extract"
	"pointpath/internal/gcode"
	"pointpath/internal/graph"
	"pointpath/internal/history"
	"pointpath/internal/project"
)

var (
	ErrUninitialized = errors.New("editor: no project or image loaded")
	ErrTooFewPoints  = errors.New("editor: at least two points are needed")
)

type Config struct {
	PointDensity  float64
	PixelsPerInch float64
	Origin        graph.Origin
	HistoryLimit  int
	HitRadius     float64
	GCodeCommand  string
}

func DefaultConfig() Config {
	return Config{
		PointDensity:  project.DefaultPointDensity,
		PixelsPerInch: 50,
		Origin:        graph.Center,
		HistoryLimit:  history.DefaultLimit,
		HitRadius:     3.5,
		GCodeCommand:  gcode.DefaultCommand,
	}
}

type dragState struct {
	id   int
	from geom.Coord
	grab geom.Coord
}

// Editor is not safe for concurrent use. The graph is nil until NewProject,
// Adopt or Load is called.
type Editor struct {
	cfg  Config
	g    *graph.Graph
	log  *history.Log
	meta project.Meta

	bounds   graph.Rect
	boundsOK bool

	violations  []graph.Violation
	showInvalid bool
	revision    int
	validatedAt int

	// bulk is the graph as it was before the latest whole-path operation,
	// valid while revision == bulkAt.
	bulk   *graph.Graph
	bulkAt int

	drag *dragState
}

func New(cfg Config) *Editor {
	if cfg.PixelsPerInch <= 0 {
		cfg.PixelsPerInch = DefaultConfig().PixelsPerInch
	}
	if cfg.HitRadius <= 0 {
		cfg.HitRadius = DefaultConfig().HitRadius
	}
	return &Editor{
		cfg: cfg,
		log: history.New(cfg.HistoryLimit),
	}
}

func (e *Editor) Config() Config {
	return e.cfg
}

func (e *Editor) SetOrigin(o graph.Origin) {
	e.cfg.Origin = o
}

func (e *Editor) SetPointDensity(d float64) {
	e.cfg.PointDensity = d
}

// Graph returns the live graph for rendering. Callers must not mutate it.
func (e *Editor) Graph() *graph.Graph {
	return e.g
}

func (e *Editor) Meta() project.Meta {
	m := e.meta
	m.Origin = e.cfg.Origin
	m.PointDensity = e.cfg.PointDensity
	return m
}

func (e *Editor) ImageSize() graph.Size {
	return e.meta.ImageSize
}

func (e *Editor) requireGraph() error {
	if e.g == nil {
		return ErrUninitialized
	}
	return nil
}

func (e *Editor) touch() {
	e.revision++
}

// reset installs g as the live graph and forgets everything derived from
// the previous one.
func (e *Editor) reset(g *graph.Graph) {
	e.g = g
	e.log.Clear()
	e.bulk = nil
	e.drag = nil
	e.violations = nil
	e.showInvalid = false
	e.boundsOK = false
	e.touch()
	e.RefreshBounds()
}

// NewProject starts an empty graph, keeping the current image.
func (e *Editor) NewProject() {
	e.meta.ProjectID = ""
	e.reset(graph.New())
}

// SetImage records the source image the points belong to.
func (e *Editor) SetImage(path string, size graph.Size) {
	e.meta.ImagePath = path
	e.meta.ImageSize = size
}

// Adopt replaces the graph with a finished extraction.
func (e *Editor) Adopt(res extract.Result) error {
	g := graph.New()
	if err := g.Adopt(res.Points); err != nil {
		return err
	}
	if res.ImageSize.W > 0 && res.ImageSize.H > 0 {
		e.meta.ImageSize = res.ImageSize
	}
	e.reset(g)
	return nil
}

// PointAt returns the point under (x, y) within the hit radius, or nil.
func (e *Editor) PointAt(x, y float64) *graph.Point {
	if e.g == nil {
		return nil
	}
	return e.g.PointAt(x, y, e.cfg.HitRadius)
}

// Path returns the point collection for rendering.
func (e *Editor) Path() []*graph.Point {
	if e.g == nil {
		return nil
	}
	return e.g.Points()
}

// TravelOrder returns the points in the order the machine visits them.
func (e *Editor) TravelOrder() []*graph.Point {
	if e.g == nil {
		return nil
	}
	return e.g.Traverse()
}

// MachinePosition converts an image position into machine coordinates.
func (e *Editor) MachinePosition(x, y float64) (geom.Coord, error) {
	size := e.meta.ImageSize
	if size.W <= 0 || size.H <= 0 {
		return geom.Coord{}, ErrUninitialized
	}
	return graph.ConvertOrigin(geom.Coord{X: x, Y: y}, graph.TopLeft, e.cfg.Origin, size)
}

// RefreshBounds recomputes the cached bounds. Rendering polls Bounds, so
// callers refresh on a timer rather than after every edit.
func (e *Editor) RefreshBounds() (graph.Rect, bool) {
	if e.g == nil {
		e.bounds, e.boundsOK = graph.Rect{}, false
	} else {
		e.bounds, e.boundsOK = graph.ComputeBounds(e.g.Points())
	}
	return e.bounds, e.boundsOK
}

func (e *Editor) Bounds() (graph.Rect, bool) {
	return e.bounds, e.boundsOK
}

// BoundsInches is Bounds scaled by the pixels per inch, to three places.
func (e *Editor) BoundsInches() (graph.Rect, bool) {
	if !e.boundsOK {
		return graph.Rect{}, false
	}
	return e.bounds.Scale(1 / e.cfg.PixelsPerInch).Round(3), true
}

// PathCode renders the travel order as G-code.
func (e *Editor) PathCode() (string, error) {
	var sb strings.Builder
	if err := e.WritePathCode(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (e *Editor) WritePathCode(w io.Writer) error {
	if err := e.requireGraph(); err != nil {
		return err
	}
	size := e.meta.ImageSize
	if size.W <= 0 || size.H <= 0 {
		return fmt.Errorf("%w: image size unknown", ErrUninitialized)
	}
	order := e.g.Traverse()
	if len(order) < 2 {
		return ErrTooFewPoints
	}
	points := gcode.Coords(order)
	return gcode.Write(w, points, size, e.cfg.Origin, gcode.Options{Command: e.cfg.GCodeCommand})
}

// Save writes the project. The project id minted on first save is kept.
func (e *Editor) Save(path string) error {
	if err := e.requireGraph(); err != nil {
		return err
	}
	snap := project.Serialize(e.g, e.Meta())
	if err := project.Save(path, snap); err != nil {
		return err
	}
	e.meta.ProjectID = snap.ProjectID
	return nil
}

// Load replaces the graph and settings with a saved project. History is
// cleared.
func (e *Editor) Load(path string) error {
	snap, err := project.Load(path)
	if err != nil {
		return err
	}
	g, meta, err := project.Deserialize(snap)
	if err != nil {
		return err
	}
	e.meta = meta
	e.cfg.Origin = meta.Origin
	e.cfg.PointDensity = meta.PointDensity
	e.reset(g)
	return nil
}
