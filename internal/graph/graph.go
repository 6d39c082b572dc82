package graph

import (
	"fmt"

	"github.com/peterstace/simplefeatures/rtree"
)

// Graph owns an ordered collection of points and the next/prev relations
// between them. Relations are stored as ids; refs is the reverse index used to
// clear every relation that names a point when it is removed.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	points []*Point
	slot   map[int]int         // id -> position in points
	refs   map[int]map[int]int // target id -> referrer id -> relation count
	nextID int
	conn   int

	tree      *rtree.RTree
	treeDirty bool
}

func New() *Graph {
	return &Graph{
		slot:      make(map[int]int),
		refs:      make(map[int]map[int]int),
		nextID:    1,
		treeDirty: true,
	}
}

// Adopt replaces the graph contents with points, keeping their ids and
// relations as they are. Ids must be positive and unique.
func (g *Graph) Adopt(points []*Point) error {
	seen := make(map[int]bool, len(points))
	maxConn := Unassigned
	for _, p := range points {
		if p.ID <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidID, p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = true
		if p.Conn > maxConn {
			maxConn = p.Conn
		}
	}
	g.points = append(g.points[:0:0], points...)
	g.nextID = 1
	g.conn = maxConn + 1
	g.rebuild()
	return nil
}

// rebuild recomputes slot and refs from the point fields.
func (g *Graph) rebuild() {
	g.slot = make(map[int]int, len(g.points))
	g.refs = make(map[int]map[int]int)
	for i, p := range g.points {
		g.slot[p.ID] = i
		if p.ID >= g.nextID {
			g.nextID = p.ID + 1
		}
		g.addRef(p.next, p.ID)
		g.addRef(p.prev, p.ID)
	}
	g.treeDirty = true
}

func (g *Graph) reindexFrom(i int) {
	for ; i < len(g.points); i++ {
		g.slot[g.points[i].ID] = i
	}
}

func (g *Graph) addRef(target, from int) {
	if target == NoLink {
		return
	}
	m := g.refs[target]
	if m == nil {
		m = make(map[int]int)
		g.refs[target] = m
	}
	m[from]++
}

func (g *Graph) dropRef(target, from int) {
	if target == NoLink {
		return
	}
	m := g.refs[target]
	if m == nil {
		return
	}
	m[from]--
	if m[from] <= 0 {
		delete(m, from)
	}
	if len(m) == 0 {
		delete(g.refs, target)
	}
}

func (g *Graph) setNext(p *Point, id int) {
	g.dropRef(p.next, p.ID)
	p.next = id
	g.addRef(id, p.ID)
}

func (g *Graph) setPrev(p *Point, id int) {
	g.dropRef(p.prev, p.ID)
	p.prev = id
	g.addRef(id, p.ID)
}

func (g *Graph) Len() int {
	return len(g.points)
}

// Points returns the collection in order. The slice is borrowed: callers may
// read it for rendering but must mutate only through Graph methods.
func (g *Graph) Points() []*Point {
	return g.points
}

func (g *Graph) Get(id int) *Point {
	i, ok := g.slot[id]
	if !ok {
		return nil
	}
	return g.points[i]
}

// Index returns the position of id in the collection, or -1.
func (g *Graph) Index(id int) int {
	i, ok := g.slot[id]
	if !ok {
		return -1
	}
	return i
}

func (g *Graph) Next(p *Point) *Point {
	if p == nil || p.next == NoLink {
		return nil
	}
	return g.Get(p.next)
}

func (g *Graph) Prev(p *Point) *Point {
	if p == nil || p.prev == NoLink {
		return nil
	}
	return g.Get(p.prev)
}

// Add appends a new unlinked point with a fresh id.
func (g *Graph) Add(x, y float64) *Point {
	p := newPoint(g.nextID, x, y)
	g.nextID++
	g.slot[p.ID] = len(g.points)
	g.points = append(g.points, p)
	g.treeDirty = true
	return p
}

// Insert puts p back into the collection at index, keeping its id. Its
// relations are cleared; link it afterwards.
func (g *Graph) Insert(p *Point, index int) error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, p.ID)
	}
	if _, ok := g.slot[p.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
	}
	if index < 0 || index > len(g.points) {
		index = len(g.points)
	}
	p.next, p.prev = NoLink, NoLink

	g.points = append(g.points, nil)
	copy(g.points[index+1:], g.points[index:])
	g.points[index] = p
	g.reindexFrom(index)

	if p.ID >= g.nextID {
		g.nextID = p.ID + 1
	}
	g.treeDirty = true
	return nil
}

// Remove drops the point and clears every relation that referred to it.
// It returns the removed point and the position it held.
func (g *Graph) Remove(id int) (*Point, int, error) {
	i, ok := g.slot[id]
	if !ok {
		return nil, -1, fmt.Errorf("%w: %d", ErrPointNotFound, id)
	}
	p := g.points[i]

	referrers := make([]int, 0, len(g.refs[id]))
	for from := range g.refs[id] {
		referrers = append(referrers, from)
	}
	for _, from := range referrers {
		q := g.Get(from)
		if q == nil || q == p {
			continue
		}
		if q.next == id {
			g.setNext(q, NoLink)
		}
		if q.prev == id {
			g.setPrev(q, NoLink)
		}
	}
	g.setNext(p, NoLink)
	g.setPrev(p, NoLink)
	delete(g.refs, id)

	g.points = append(g.points[:i], g.points[i+1:]...)
	delete(g.slot, id)
	g.reindexFrom(i)
	g.treeDirty = true
	return p, i, nil
}

// Excise removes the point and joins its neighbours so the chain stays
// unbroken.
func (g *Graph) Excise(id int) (*Point, int, error) {
	p := g.Get(id)
	if p == nil {
		return nil, -1, fmt.Errorf("%w: %d", ErrPointNotFound, id)
	}
	prev, next := p.prev, p.next
	removed, index, err := g.Remove(id)
	if err != nil {
		return nil, -1, err
	}
	if prev != NoLink && next != NoLink && prev != next && g.Get(prev) != nil && g.Get(next) != nil {
		if err := g.Link(prev, next); err != nil {
			return removed, index, err
		}
	}
	return removed, index, nil
}

// Link sets a.next = b and b.prev = a, detaching whatever a pointed to and
// whatever pointed to b.
func (g *Graph) Link(a, b int) error {
	if a == b {
		return fmt.Errorf("%w: %d", ErrSelfLink, a)
	}
	pa, pb := g.Get(a), g.Get(b)
	if pa == nil {
		return fmt.Errorf("%w: %d", ErrPointNotFound, a)
	}
	if pb == nil {
		return fmt.Errorf("%w: %d", ErrPointNotFound, b)
	}
	if old := pa.next; old != NoLink && old != b {
		if q := g.Get(old); q != nil && q.prev == a {
			g.setPrev(q, NoLink)
		}
	}
	if old := pb.prev; old != NoLink && old != a {
		if q := g.Get(old); q != nil && q.next == b {
			g.setNext(q, NoLink)
		}
	}
	g.setNext(pa, b)
	g.setPrev(pb, a)
	return nil
}

// UnlinkNext cuts the chain after a.
func (g *Graph) UnlinkNext(a int) error {
	pa := g.Get(a)
	if pa == nil {
		return fmt.Errorf("%w: %d", ErrPointNotFound, a)
	}
	if pa.next == NoLink {
		return nil
	}
	if q := g.Get(pa.next); q != nil && q.prev == a {
		g.setPrev(q, NoLink)
	}
	g.setNext(pa, NoLink)
	return nil
}

func (g *Graph) ClearLinks() {
	for _, p := range g.points {
		p.next, p.prev = NoLink, NoLink
	}
	g.refs = make(map[int]map[int]int)
}

func (g *Graph) Move(id int, x, y float64) error {
	p := g.Get(id)
	if p == nil {
		return fmt.Errorf("%w: %d", ErrPointNotFound, id)
	}
	p.SetPosition(x, y)
	g.treeDirty = true
	return nil
}

func (g *Graph) SetLocked(id int, locked bool) error {
	p := g.Get(id)
	if p == nil {
		return fmt.Errorf("%w: %d", ErrPointNotFound, id)
	}
	p.Locked = locked
	return nil
}

// Heads returns the chain starts in collection order.
func (g *Graph) Heads() []*Point {
	var heads []*Point
	for _, p := range g.points {
		if p.next != NoLink && g.Prev(p) == nil {
			heads = append(heads, p)
		}
	}
	return heads
}

// Traverse returns the points in travel order: every chain from its head, in
// the collection order of the heads, then any linked points not reached that
// way (cycles). Isolated points are left out. When nothing is linked, the
// travel order is the collection order, restricted to the points carrying a
// connection id if any do.
func (g *Graph) Traverse() []*Point {
	linked, assigned := false, false
	for _, p := range g.points {
		if p.next != NoLink || p.prev != NoLink {
			linked = true
			break
		}
		if p.Assigned() {
			assigned = true
		}
	}
	if !linked {
		if !assigned {
			return append([]*Point(nil), g.points...)
		}
		var order []*Point
		for _, p := range g.points {
			if p.Assigned() {
				order = append(order, p)
			}
		}
		return order
	}

	visited := make(map[int]bool, len(g.points))
	order := make([]*Point, 0, len(g.points))
	walk := func(p *Point) {
		for p != nil && !visited[p.ID] {
			visited[p.ID] = true
			order = append(order, p)
			p = g.Next(p)
		}
	}
	for _, p := range g.Heads() {
		walk(p)
	}
	for _, p := range g.points {
		if !visited[p.ID] && (p.next != NoLink || p.prev != NoLink) {
			walk(p)
		}
	}
	return order
}

// AssignConnection stamps the point with the current connection counter and
// advances it. Relinking is a separate step (RelinkByConnection).
func (g *Graph) AssignConnection(id int) (int, error) {
	p := g.Get(id)
	if p == nil {
		return Unassigned, fmt.Errorf("%w: %d", ErrPointNotFound, id)
	}
	p.Conn = g.conn
	g.conn++
	return p.Conn, nil
}

func (g *Graph) ConnectionCounter() int {
	return g.conn
}

func (g *Graph) SetConnectionCounter(n int) {
	if n < 0 {
		n = 0
	}
	g.conn = n
}

func (g *Graph) ClearConnections() {
	for _, p := range g.points {
		p.Conn = Unassigned
	}
	g.conn = 0
}

// BuildNearestNeighbor relinks the whole graph as a single greedy chain and
// reorders the collection to match.
func (g *Graph) BuildNearestNeighbor() {
	g.points = BuildNearestNeighbor(g.points)
	g.rebuild()
	Logger().Info("path built", "mode", "nearest-neighbor", "points", len(g.points))
}

// RelinkByConnection rebuilds the chain from the connection ids and reorders
// the collection by them.
func (g *Graph) RelinkByConnection() {
	g.points = RelinkByConnection(g.points)
	g.rebuild()
	Logger().Info("path built", "mode", "connection", "points", len(g.points))
}

// Deduplicate removes points closer than minSeparation to an earlier kept
// point. Each removed point is excised, so its neighbours are joined and a
// single chain stays a single chain. It returns the number removed.
func (g *Graph) Deduplicate(minSeparation float64) int {
	kept := Deduplicate(g.points, minSeparation)
	if len(kept) == len(g.points) {
		return 0
	}
	keep := make(map[int]bool, len(kept))
	for _, p := range kept {
		keep[p.ID] = true
	}
	var drop []int
	for _, p := range g.points {
		if !keep[p.ID] {
			drop = append(drop, p.ID)
		}
	}
	for _, id := range drop {
		g.Excise(id)
	}
	return len(drop)
}

// Clone copies the graph, preserving ids, order and relations.
func (g *Graph) Clone() *Graph {
	pts := make([]*Point, len(g.points))
	for i, p := range g.points {
		pts[i] = Restore(p.ID, p.X, p.Y, p.Locked, p.Conn, p.next, p.prev)
	}
	c := New()
	c.points = pts
	c.rebuild()
	c.nextID = g.nextID
	c.conn = g.conn
	return c
}
