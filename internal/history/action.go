package history

import (
	"fmt"

	"github.com/jbeda/geom"

	"pointpath/internal/graph"
)

type ActionType int

const (
	ActionAdd ActionType = iota
	ActionRemove
	ActionMove
	ActionLock
)

func (t ActionType) String() string {
	switch t {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionMove:
		return "move"
	case ActionLock:
		return "lock"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Action is one undoable edit. Data re-applies the edit and Inverse reverses
// it; both hold one of the payload types below.
type Action struct {
	Type    ActionType
	Data    interface{}
	Inverse interface{}
}

// PointState is everything needed to rebuild a point with its identity.
type PointState struct {
	ID     int
	X, Y   float64
	Locked bool
	Conn   int
}

// AddData puts a point back at Index and links it between Prev and Next.
type AddData struct {
	Point PointState
	Index int
	Prev  int
	Next  int
}

// RemoveData takes a point out, joining its neighbours.
type RemoveData struct {
	ID int
}

type MoveData struct {
	ID   int
	X, Y float64
}

type LockData struct {
	ID     int
	Locked bool
}

func stateOf(p *graph.Point, index int) AddData {
	prev, _ := p.Prev()
	next, _ := p.Next()
	return AddData{
		Point: PointState{ID: p.ID, X: p.X, Y: p.Y, Locked: p.Locked, Conn: p.Conn},
		Index: index,
		Prev:  prev,
		Next:  next,
	}
}

// Added records a point that is already in the graph at index, with its
// relations in place.
func Added(p *graph.Point, index int) Action {
	return Action{
		Type:    ActionAdd,
		Data:    stateOf(p, index),
		Inverse: RemoveData{ID: p.ID},
	}
}

// Removed records a point that is about to be removed. Call it before the
// removal so the point's relations are captured.
func Removed(p *graph.Point, index int) Action {
	return Action{
		Type:    ActionRemove,
		Data:    RemoveData{ID: p.ID},
		Inverse: stateOf(p, index),
	}
}

func Moved(id int, from, to geom.Coord) Action {
	return Action{
		Type:    ActionMove,
		Data:    MoveData{ID: id, X: to.X, Y: to.Y},
		Inverse: MoveData{ID: id, X: from.X, Y: from.Y},
	}
}

// Locked records a lock flag change to locked.
func Locked(id int, locked bool) Action {
	return Action{
		Type:    ActionLock,
		Data:    LockData{ID: id, Locked: locked},
		Inverse: LockData{ID: id, Locked: !locked},
	}
}

// Target is the part of a graph the log edits.
type Target interface {
	Get(id int) *graph.Point
	Insert(p *graph.Point, index int) error
	Excise(id int) (*graph.Point, int, error)
	Link(a, b int) error
	Move(id int, x, y float64) error
	SetLocked(id int, locked bool) error
}

func apply(t Target, payload interface{}) error {
	switch data := payload.(type) {
	case AddData:
		s := data.Point
		p := graph.Restore(s.ID, s.X, s.Y, s.Locked, s.Conn, graph.NoLink, graph.NoLink)
		if err := t.Insert(p, data.Index); err != nil {
			return err
		}
		if data.Prev != graph.NoLink && t.Get(data.Prev) != nil {
			if err := t.Link(data.Prev, s.ID); err != nil {
				return err
			}
		}
		if data.Next != graph.NoLink && t.Get(data.Next) != nil {
			if err := t.Link(s.ID, data.Next); err != nil {
				return err
			}
		}
		return nil
	case RemoveData:
		_, _, err := t.Excise(data.ID)
		return err
	case MoveData:
		return t.Move(data.ID, data.X, data.Y)
	case LockData:
		return t.SetLocked(data.ID, data.Locked)
	default:
		return fmt.Errorf("history: unknown payload %T", payload)
	}
}
