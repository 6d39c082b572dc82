package editor

import (
	"fmt"

	"github.com/jbeda/geom"

	"pointpath/internal/graph"
	"pointpath/internal/history"
)

func (e *Editor) point(id int) (*graph.Point, error) {
	if err := e.requireGraph(); err != nil {
		return nil, err
	}
	p := e.g.Get(id)
	if p == nil {
		return nil, fmt.Errorf("%w: %d", graph.ErrPointNotFound, id)
	}
	return p, nil
}

// AddPoint appends an unlinked point.
func (e *Editor) AddPoint(x, y float64) (*graph.Point, error) {
	if err := e.requireGraph(); err != nil {
		return nil, err
	}
	p := e.g.Add(x, y)
	e.log.Record(history.Added(p, e.g.Index(p.ID)))
	e.touch()
	return p, nil
}

// InsertAfter adds a point and splices it into the path right after id.
func (e *Editor) InsertAfter(id int, x, y float64) (*graph.Point, error) {
	anchor, err := e.point(id)
	if err != nil {
		return nil, err
	}
	next, hasNext := anchor.Next()

	p := e.g.Add(x, y)
	if err := e.g.Link(id, p.ID); err != nil {
		return nil, err
	}
	if hasNext && e.g.Get(next) != nil {
		if err := e.g.Link(p.ID, next); err != nil {
			return nil, err
		}
	}
	e.log.Record(history.Added(p, e.g.Index(p.ID)))
	e.touch()
	return p, nil
}

// RemovePoint deletes a point and joins its neighbours. Locked points are
// refused.
func (e *Editor) RemovePoint(id int) error {
	p, err := e.point(id)
	if err != nil {
		return err
	}
	if p.Locked {
		return fmt.Errorf("%w: %d", graph.ErrPointLocked, id)
	}
	action := history.Removed(p, e.g.Index(id))
	if _, _, err := e.g.Excise(id); err != nil {
		return err
	}
	e.log.Record(action)
	e.touch()
	return nil
}

// MovePoint moves a point in one step.
func (e *Editor) MovePoint(id int, x, y float64) error {
	p, err := e.point(id)
	if err != nil {
		return err
	}
	from := p.Position()
	to := geom.Coord{X: x, Y: y}
	if from == to {
		return nil
	}
	if err := e.g.Move(id, x, y); err != nil {
		return err
	}
	e.log.Record(history.Moved(id, from, to))
	e.touch()
	return nil
}

// StartDrag grabs the point under (x, y). It reports false when nothing is
// there.
func (e *Editor) StartDrag(x, y float64) (*graph.Point, bool) {
	p := e.PointAt(x, y)
	if p == nil {
		return nil, false
	}
	pos := p.Position()
	e.drag = &dragState{
		id:   p.ID,
		from: pos,
		grab: pos.Minus(geom.Coord{X: x, Y: y}),
	}
	return p, true
}

func (e *Editor) Dragging() (int, bool) {
	if e.drag == nil {
		return 0, false
	}
	return e.drag.id, true
}

// DragTo moves the grabbed point so it keeps its offset from (x, y).
func (e *Editor) DragTo(x, y float64) error {
	if e.drag == nil {
		return nil
	}
	to := e.drag.grab.Plus(geom.Coord{X: x, Y: y})
	return e.g.Move(e.drag.id, to.X, to.Y)
}

// EndDrag drops the point and records the whole drag as one move.
func (e *Editor) EndDrag() {
	d := e.drag
	e.drag = nil
	if d == nil || e.g == nil {
		return
	}
	p := e.g.Get(d.id)
	if p == nil || p.Position() == d.from {
		return
	}
	e.log.Record(history.Moved(d.id, d.from, p.Position()))
	e.touch()
}

// CancelDrag puts the grabbed point back where it started.
func (e *Editor) CancelDrag() {
	d := e.drag
	e.drag = nil
	if d == nil || e.g == nil {
		return
	}
	e.g.Move(d.id, d.from.X, d.from.Y)
}

func (e *Editor) ToggleLock(id int) (bool, error) {
	p, err := e.point(id)
	if err != nil {
		return false, err
	}
	locked := !p.Locked
	if err := e.g.SetLocked(id, locked); err != nil {
		return false, err
	}
	e.log.Record(history.Locked(id, locked))
	e.touch()
	return locked, nil
}

// Undo reverses the latest edit. It reports whether anything changed.
func (e *Editor) Undo() (bool, error) {
	if err := e.requireGraph(); err != nil {
		return false, err
	}
	_, ok, err := e.log.Undo(e.g)
	if ok {
		e.touch()
	}
	return ok, err
}

func (e *Editor) Redo() (bool, error) {
	if err := e.requireGraph(); err != nil {
		return false, err
	}
	_, ok, err := e.log.Redo(e.g)
	if ok {
		e.touch()
	}
	return ok, err
}

func (e *Editor) CanUndo() bool { return e.log.CanUndo() }
func (e *Editor) CanRedo() bool { return e.log.CanRedo() }

// keepBulk records before as the state to go back to after a whole-path
// operation. Those are not in the history log.
func (e *Editor) keepBulk(before *graph.Graph) {
	e.touch()
	e.bulk = before
	e.bulkAt = e.revision
}

func (e *Editor) CanRevert() bool {
	return e.bulk != nil && e.bulkAt == e.revision
}

// RevertBulk puts back the graph as it was before the latest rebuild, clean,
// relink or unlink, provided nothing else changed since. It reports whether
// anything was restored.
func (e *Editor) RevertBulk() (bool, error) {
	if err := e.requireGraph(); err != nil {
		return false, err
	}
	if !e.CanRevert() {
		return false, nil
	}
	e.g, e.bulk = e.bulk, nil
	e.drag = nil
	e.touch()
	graph.Logger().Info("path reverted", "points", e.g.Len())
	return true, nil
}

// RecalcPath relinks every point as a nearest-neighbour chain.
func (e *Editor) RecalcPath() error {
	if err := e.requireGraph(); err != nil {
		return err
	}
	if e.g.Len() < 2 {
		return ErrTooFewPoints
	}
	before := e.g.Clone()
	e.g.BuildNearestNeighbor()
	e.keepBulk(before)
	return nil
}

// Clean drops points closer than the point density to an earlier one. It
// returns how many were removed.
func (e *Editor) Clean() (int, error) {
	if err := e.requireGraph(); err != nil {
		return 0, err
	}
	before := e.g.Clone()
	n := e.g.Deduplicate(e.cfg.PointDensity)
	if n > 0 {
		e.keepBulk(before)
	}
	return n, nil
}

// BreakAfter cuts the path after id, leaving two chains.
func (e *Editor) BreakAfter(id int) error {
	p, err := e.point(id)
	if err != nil {
		return err
	}
	if _, ok := p.Next(); !ok {
		return nil
	}
	before := e.g.Clone()
	if err := e.g.UnlinkNext(id); err != nil {
		return err
	}
	e.keepBulk(before)
	return nil
}

// Unlink drops every relation, leaving the points in place.
func (e *Editor) Unlink() error {
	if err := e.requireGraph(); err != nil {
		return err
	}
	before := e.g.Clone()
	e.g.ClearLinks()
	e.keepBulk(before)
	return nil
}

// AssignConnection gives id the next connection number. The path is not
// relinked until RelinkByConnection.
func (e *Editor) AssignConnection(id int) (int, error) {
	if err := e.requireGraph(); err != nil {
		return graph.Unassigned, err
	}
	n, err := e.g.AssignConnection(id)
	if err == nil {
		e.touch()
	}
	return n, err
}

func (e *Editor) ConnectionCounter() int {
	if e.g == nil {
		return 0
	}
	return e.g.ConnectionCounter()
}

func (e *Editor) SetConnectionCounter(n int) error {
	if err := e.requireGraph(); err != nil {
		return err
	}
	e.g.SetConnectionCounter(n)
	e.touch()
	return nil
}

func (e *Editor) RelinkByConnection() error {
	if err := e.requireGraph(); err != nil {
		return err
	}
	before := e.g.Clone()
	e.g.RelinkByConnection()
	e.keepBulk(before)
	return nil
}

func (e *Editor) ClearConnections() error {
	if err := e.requireGraph(); err != nil {
		return err
	}
	before := e.g.Clone()
	e.g.ClearConnections()
	e.keepBulk(before)
	return nil
}

// Validate checks the path and keeps the result for highlighting.
func (e *Editor) Validate() ([]graph.Violation, error) {
	if err := e.requireGraph(); err != nil {
		return nil, err
	}
	e.violations = graph.Validate(e.g)
	e.showInvalid = true
	e.validatedAt = e.revision
	return e.violations, nil
}

// ToggleValidation validates, or clears the highlight when the previous call
// validated and nothing changed since. It reports whether the highlight is
// shown.
func (e *Editor) ToggleValidation() (bool, error) {
	if e.showInvalid && e.validatedAt == e.revision {
		e.showInvalid = false
		e.violations = nil
		return false, nil
	}
	if _, err := e.Validate(); err != nil {
		return false, err
	}
	return true, nil
}

// ValidationErrors returns the highlighted violations, if any.
func (e *Editor) ValidationErrors() []graph.Violation {
	if !e.showInvalid {
		return nil
	}
	return e.violations
}

// Highlighted returns the ids of points with a highlighted violation.
func (e *Editor) Highlighted() map[int]bool {
	out := make(map[int]bool)
	for _, v := range e.ValidationErrors() {
		out[v.ID] = true
	}
	return out
}
