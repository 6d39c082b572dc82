// Package history keeps the bounded undo and redo stacks of point edits.
package history

import (
	"pointpath/internal/graph"
)

// DefaultLimit is the capacity of each stack.
const DefaultLimit = 1000

// Log holds two bounded stacks. Pushing past the limit silently drops the
// oldest entry.
//
// Recording a new action leaves the redo stack as it is.
type Log struct {
	limit int
	undo  []Action
	redo  []Action
}

func New(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

func (l *Log) push(stack []Action, a Action) []Action {
	if len(stack) >= l.limit {
		copy(stack, stack[len(stack)-l.limit+1:])
		stack = stack[:l.limit-1]
	}
	return append(stack, a)
}

func pop(stack []Action) ([]Action, Action) {
	last := len(stack) - 1
	a := stack[last]
	stack[last] = Action{}
	return stack[:last], a
}

func (l *Log) Record(a Action) {
	l.undo = l.push(l.undo, a)
}

// Undo reverses the latest action and moves it to the redo stack. It reports
// false when there is nothing to undo. An action whose point no longer exists
// is dropped and its error returned.
func (l *Log) Undo(t Target) (Action, bool, error) {
	if len(l.undo) == 0 {
		return Action{}, false, nil
	}
	var a Action
	l.undo, a = pop(l.undo)
	if err := apply(t, a.Inverse); err != nil {
		graph.Logger().Warn("dropping stale undo action", "action", a.Type, "err", err)
		return a, false, err
	}
	l.redo = l.push(l.redo, a)
	return a, true, nil
}

// Redo re-applies the latest undone action and moves it back to the undo
// stack.
func (l *Log) Redo(t Target) (Action, bool, error) {
	if len(l.redo) == 0 {
		return Action{}, false, nil
	}
	var a Action
	l.redo, a = pop(l.redo)
	if err := apply(t, a.Data); err != nil {
		graph.Logger().Warn("dropping stale redo action", "action", a.Type, "err", err)
		return a, false, err
	}
	l.undo = l.push(l.undo, a)
	return a, true, nil
}

func (l *Log) CanUndo() bool { return len(l.undo) > 0 }
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }

// Len returns the sizes of the undo and redo stacks.
func (l *Log) Len() (undo, redo int) {
	return len(l.undo), len(l.redo)
}

func (l *Log) Limit() int {
	return l.limit
}

func (l *Log) Clear() {
	l.undo = nil
	l.redo = nil
}
