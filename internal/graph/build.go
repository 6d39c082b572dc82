package graph

import (
	"sort"

	"github.com/peterstace/simplefeatures/rtree"
)

func clearRelations(points []*Point) {
	for _, p := range points {
		p.next, p.prev = NoLink, NoLink
	}
}

// BuildNearestNeighbor links points into a single greedy chain starting at
// points[0]: each step picks the remaining point closest to the tail. Ties go
// to the point that comes first in the input. Existing relations are
// discarded. The chain order is returned; the input slice is not reordered.
func BuildNearestNeighbor(points []*Point) []*Point {
	clearRelations(points)
	if len(points) == 0 {
		return nil
	}

	idx := bulkIndex(points)
	used := make([]bool, len(points))
	order := make([]*Point, 0, len(points))
	tail := points[0]
	used[0] = true
	order = append(order, tail)

	for len(order) < len(points) {
		best, bestD := -1, 0.0
		idx.PrioritySearch(pointBox(tail.X, tail.Y), func(i int) error {
			if used[i] {
				return nil
			}
			q := points[i]
			dx, dy := q.X-tail.X, q.Y-tail.Y
			d := dx*dx + dy*dy
			switch {
			case best < 0:
				best, bestD = i, d
			case d > bestD:
				return rtree.Stop
			case d == bestD && i < best:
				best = i
			}
			return nil
		})
		if best < 0 {
			break
		}
		next := points[best]
		used[best] = true
		tail.next = next.ID
		next.prev = tail.ID
		order = append(order, next)
		tail = next
	}
	return order
}

// RelinkByConnection orders points by connection id and links each adjacent
// pair where both ends carry an assigned id. Points without an id end up
// isolated at the front. The sort is stable so equal ids keep input order.
func RelinkByConnection(points []*Point) []*Point {
	order := append([]*Point(nil), points...)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Conn < order[j].Conn
	})
	clearRelations(order)
	for i := 1; i < len(order); i++ {
		a, b := order[i-1], order[i]
		if a.Assigned() && b.Assigned() {
			a.next = b.ID
			b.prev = a.ID
		}
	}
	return order
}
