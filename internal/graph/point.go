package graph

import (
	"fmt"

	"github.com/jbeda/geom"
)

const (
	// Unassigned is the connection id of a point the operator has not yet
	// placed in the manual ordering.
	Unassigned = -1

	// NoLink is the relation value for "no neighbour on this side". Point ids
	// start at 1, so 0 never names a live point.
	NoLink = 0
)

// Point is a node of the path. next and prev hold the ids of its neighbours,
// never pointers: they are relations into the owning Graph, not ownership.
type Point struct {
	ID int
	geom.Coord
	Locked bool
	Conn   int

	next int
	prev int
}

func newPoint(id int, x, y float64) *Point {
	return &Point{
		ID:    id,
		Coord: geom.Coord{X: x, Y: y},
		Conn:  Unassigned,
	}
}

// Restore builds a point with explicit relations. Codecs use it to rebuild a
// graph from stored ids; the relations are checked when the points are
// adopted by a Graph.
func Restore(id int, x, y float64, locked bool, conn, next, prev int) *Point {
	p := newPoint(id, x, y)
	p.Locked = locked
	p.Conn = conn
	p.next = next
	p.prev = prev
	return p
}

// SetPosition moves the point. Points owned by a Graph should be moved with
// Graph.Move so the hit-test index stays current.
func (p *Point) SetPosition(x, y float64) {
	p.X = x
	p.Y = y
}

func (p *Point) Position() geom.Coord {
	return p.Coord
}

// Distance is the Euclidean distance between the two points.
func (p *Point) Distance(o *Point) float64 {
	return p.Coord.DistanceFrom(o.Coord)
}

// SamePosition reports coordinate equality. This is the equality used for hit
// testing; graph linking always compares IDs.
func (p *Point) SamePosition(o *Point) bool {
	return p.X == o.X && p.Y == o.Y
}

func (p *Point) Next() (int, bool) {
	return p.next, p.next != NoLink
}

func (p *Point) Prev() (int, bool) {
	return p.prev, p.prev != NoLink
}

// Assigned reports whether the point carries a manual connection id.
func (p *Point) Assigned() bool {
	return p.Conn >= 0
}

func (p *Point) String() string {
	return fmt.Sprintf("Point(%d: %g, %g)", p.ID, p.X, p.Y)
}
