package graph

import (
	"errors"
	"testing"
)

func chain(t *testing.T, coords ...[2]float64) *Graph {
	t.Helper()
	g := New()
	var prev *Point
	for _, c := range coords {
		p := g.Add(c[0], c[1])
		if prev != nil {
			if err := g.Link(prev.ID, p.ID); err != nil {
				t.Fatalf("Link(%d, %d): %v", prev.ID, p.ID, err)
			}
		}
		prev = p
	}
	return g
}

func ids(points []*Point) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddAssignsFreshIDs(t *testing.T) {
	g := New()
	a := g.Add(1, 2)
	b := g.Add(3, 4)
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", a.ID, b.ID)
	}
	if a.Conn != Unassigned {
		t.Errorf("new point conn = %d, want %d", a.Conn, Unassigned)
	}
	if _, ok := a.Next(); ok {
		t.Error("new point has a next relation")
	}

	other := New()
	if p := other.Add(0, 0); p.ID != 1 {
		t.Errorf("ids are not per graph: got %d", p.ID)
	}
}

func TestLinkIsSymmetric(t *testing.T) {
	g := chain(t, [2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0})
	a, b, c := g.Points()[0], g.Points()[1], g.Points()[2]

	if g.Next(a) != b || g.Prev(b) != a || g.Next(b) != c || g.Prev(c) != b {
		t.Fatal("chain relations are not symmetric")
	}

	// Relinking a to c must detach b from a.
	if err := g.Link(a.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	if g.Prev(b) != nil {
		t.Errorf("b.prev = %v, want none", g.Prev(b))
	}
	if g.Next(b) != nil {
		t.Errorf("b.next = %v, want none", g.Next(b))
	}
	if got := Validate(g); len(got) != 1 || got[0] != (Violation{ID: b.ID, Reason: ReasonIsolated}) {
		t.Errorf("Validate = %v, want b isolated only", got)
	}
}

func TestLinkErrors(t *testing.T) {
	g := New()
	a := g.Add(0, 0)
	if err := g.Link(a.ID, a.ID); !errors.Is(err, ErrSelfLink) {
		t.Errorf("self link err = %v", err)
	}
	if err := g.Link(a.ID, 99); !errors.Is(err, ErrPointNotFound) {
		t.Errorf("missing target err = %v", err)
	}
}

func TestRemoveClearsReferrers(t *testing.T) {
	g := chain(t, [2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0})
	a, b, c := g.Points()[0], g.Points()[1], g.Points()[2]

	removed, index, err := g.Remove(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed != b || index != 1 {
		t.Errorf("Remove = %v at %d", removed, index)
	}
	if _, ok := a.Next(); ok {
		t.Error("a still points at removed b")
	}
	if _, ok := c.Prev(); ok {
		t.Error("c still points back at removed b")
	}
	if g.Get(b.ID) != nil || g.Index(c.ID) != 1 {
		t.Error("slot index not updated")
	}
	if _, _, err := g.Remove(b.ID); !errors.Is(err, ErrPointNotFound) {
		t.Errorf("second remove err = %v", err)
	}
}

func TestExciseBridgesNeighbours(t *testing.T) {
	g := chain(t, [2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0})
	a, b, c := g.Points()[0], g.Points()[1], g.Points()[2]

	if _, _, err := g.Excise(b.ID); err != nil {
		t.Fatal(err)
	}
	if g.Next(a) != c || g.Prev(c) != a {
		t.Error("neighbours were not bridged")
	}
	if v := Validate(g); len(v) != 0 {
		t.Errorf("Validate = %v", v)
	}
}

func TestInsertKeepsIdentity(t *testing.T) {
	g := chain(t, [2]float64{0, 0}, [2]float64{1, 0})
	p, index, err := g.Remove(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Insert(p, index); err != nil {
		t.Fatal(err)
	}
	if g.Points()[0] != p || g.Index(p.ID) != 0 || g.Index(2) != 1 {
		t.Errorf("order = %v", ids(g.Points()))
	}
	if err := g.Insert(Restore(2, 0, 0, false, Unassigned, NoLink, NoLink), 0); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate insert err = %v", err)
	}
	if q := g.Add(5, 5); q.ID != 3 {
		t.Errorf("next id after insert = %d, want 3", q.ID)
	}
}

func TestAdopt(t *testing.T) {
	g := New()
	err := g.Adopt([]*Point{
		Restore(7, 0, 0, false, 2, 9, NoLink),
		Restore(9, 1, 0, true, 4, NoLink, 7),
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.Next(g.Get(7)) != g.Get(9) {
		t.Error("relations lost on adopt")
	}
	if g.ConnectionCounter() != 5 {
		t.Errorf("connection counter = %d, want 5", g.ConnectionCounter())
	}
	if p := g.Add(0, 0); p.ID != 10 {
		t.Errorf("next id = %d, want 10", p.ID)
	}

	// Removing 9 must clear 7.next through the rebuilt reverse index.
	if _, _, err := g.Remove(9); err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Get(7).Next(); ok {
		t.Error("reverse index not rebuilt on adopt")
	}

	tests := []struct {
		name   string
		points []*Point
		want   error
	}{
		{"zero id", []*Point{Restore(0, 0, 0, false, Unassigned, NoLink, NoLink)}, ErrInvalidID},
		{"duplicate", []*Point{
			Restore(1, 0, 0, false, Unassigned, NoLink, NoLink),
			Restore(1, 1, 1, false, Unassigned, NoLink, NoLink),
		}, ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := New().Adopt(tt.points); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTraverse(t *testing.T) {
	t.Run("no links uses collection order", func(t *testing.T) {
		g := New()
		g.Add(0, 0)
		g.Add(5, 5)
		g.Add(1, 1)
		if got := ids(g.Traverse()); !equalInts(got, []int{1, 2, 3}) {
			t.Errorf("Traverse = %v", got)
		}
	})

	t.Run("no links with one connection id", func(t *testing.T) {
		g := New()
		for i := 0; i < 4; i++ {
			g.Add(float64(i), 0)
		}
		if _, err := g.AssignConnection(3); err != nil {
			t.Fatal(err)
		}
		g.RelinkByConnection()
		if got := ids(g.Traverse()); !equalInts(got, []int{3}) {
			t.Errorf("Traverse = %v, want only the assigned point", got)
		}
	})

	t.Run("chain order skips isolated", func(t *testing.T) {
		g := New()
		for i := 0; i < 4; i++ {
			g.Add(float64(i), 0)
		}
		g.Link(3, 1)
		g.Link(1, 2)
		if got := ids(g.Traverse()); !equalInts(got, []int{3, 1, 2}) {
			t.Errorf("Traverse = %v", got)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		g := New()
		for i := 0; i < 3; i++ {
			g.Add(float64(i), 0)
		}
		g.Link(1, 2)
		g.Link(2, 3)
		g.Link(3, 1)
		if got := ids(g.Traverse()); !equalInts(got, []int{1, 2, 3}) {
			t.Errorf("Traverse = %v", got)
		}
	})
}

func TestConnectionCounter(t *testing.T) {
	g := New()
	a := g.Add(0, 0)
	b := g.Add(1, 0)
	if n, _ := g.AssignConnection(b.ID); n != 0 {
		t.Errorf("first id = %d", n)
	}
	g.SetConnectionCounter(5)
	if n, _ := g.AssignConnection(a.ID); n != 5 {
		t.Errorf("id after adjust = %d", n)
	}
	g.SetConnectionCounter(-3)
	if g.ConnectionCounter() != 0 {
		t.Errorf("counter = %d, want clamp to 0", g.ConnectionCounter())
	}
	g.ClearConnections()
	if a.Assigned() || b.Assigned() {
		t.Error("ClearConnections left ids")
	}
	if _, err := g.AssignConnection(42); !errors.Is(err, ErrPointNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestPointAt(t *testing.T) {
	g := New()
	g.Add(10, 10)
	g.Add(11, 10)
	g.Add(50, 50)

	tests := []struct {
		x, y float64
		want int
	}{
		{10, 10, 1},
		{11.5, 10, 1}, // both within radius, earliest wins
		{14, 10, 2},
		{15, 10, 0},
		{50, 52, 3},
		{50, 53.5, 0}, // on the edge is a miss
	}
	for _, tt := range tests {
		p := g.PointAt(tt.x, tt.y, 3.5)
		got := 0
		if p != nil {
			got = p.ID
		}
		if got != tt.want {
			t.Errorf("PointAt(%g, %g) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}

	// The index follows moves.
	g.Move(3, 0, 0)
	if p := g.PointAt(0, 0, 1); p == nil || p.ID != 3 {
		t.Errorf("PointAt after move = %v", p)
	}
}

func TestClone(t *testing.T) {
	g := chain(t, [2]float64{0, 0}, [2]float64{3, 4}, [2]float64{6, 8})
	g.SetLocked(2, true)
	c := g.Clone()

	c.Move(1, 100, 100)
	if g.Get(1).X != 0 {
		t.Error("clone shares points with the original")
	}
	if !c.Get(2).Locked || c.Next(c.Get(1)) != c.Get(2) {
		t.Error("clone lost state")
	}
	if p := c.Add(0, 0); p.ID != 4 {
		t.Errorf("clone next id = %d", p.ID)
	}
}

func TestUnlinkNextSplitsChain(t *testing.T) {
	g := chain(t, [2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0}, [2]float64{3, 0})
	if got := ids(g.Heads()); !equalInts(got, []int{1}) {
		t.Fatalf("heads = %v", got)
	}
	if err := g.UnlinkNext(2); err != nil {
		t.Fatal(err)
	}
	if got := ids(g.Heads()); !equalInts(got, []int{1, 3}) {
		t.Errorf("heads after cut = %v", got)
	}
	if g.Next(g.Get(2)) != nil || g.Prev(g.Get(3)) != nil {
		t.Error("cut left a half link")
	}
	if err := g.UnlinkNext(4); err != nil {
		t.Errorf("UnlinkNext on a tail: %v", err)
	}
	if err := g.UnlinkNext(99); !errors.Is(err, ErrPointNotFound) {
		t.Errorf("err = %v", err)
	}

	g.ClearLinks()
	if len(g.Heads()) != 0 {
		t.Errorf("heads after ClearLinks = %v", ids(g.Heads()))
	}
	for _, p := range g.Points() {
		if _, ok := p.Next(); ok {
			t.Errorf("point %d still linked", p.ID)
		}
	}
}
