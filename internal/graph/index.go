package graph

import (
	"math"

	"github.com/peterstace/simplefeatures/rtree"
)

func pointBox(x, y float64) rtree.Box {
	return rtree.Box{MinX: x, MinY: y, MaxX: x, MaxY: y}
}

func squareBox(x, y, r float64) rtree.Box {
	return rtree.Box{MinX: x - r, MinY: y - r, MaxX: x + r, MaxY: y + r}
}

// bulkIndex loads points into an R-tree keyed by their position in the slice.
func bulkIndex(points []*Point) *rtree.RTree {
	items := make([]rtree.BulkItem, len(points))
	for i, p := range points {
		items[i] = rtree.BulkItem{Box: pointBox(p.X, p.Y), RecordID: i}
	}
	return rtree.BulkLoad(items)
}

func (g *Graph) index() *rtree.RTree {
	if g.tree == nil || g.treeDirty {
		g.tree = bulkIndex(g.points)
		g.treeDirty = false
	}
	return g.tree
}

// PointAt returns the point whose position lies strictly within radius of
// (x, y) on both axes. When several qualify the one earliest in the
// collection wins. It returns nil when nothing is hit.
func (g *Graph) PointAt(x, y, radius float64) *Point {
	if len(g.points) == 0 || radius <= 0 {
		return nil
	}
	best := -1
	g.index().RangeSearch(squareBox(x, y, radius), func(i int) error {
		p := g.points[i]
		if math.Abs(p.X-x) < radius && math.Abs(p.Y-y) < radius {
			if best < 0 || i < best {
				best = i
			}
		}
		return nil
	})
	if best < 0 {
		return nil
	}
	return g.points[best]
}
