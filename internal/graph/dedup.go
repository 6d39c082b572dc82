package graph

import (
	"github.com/peterstace/simplefeatures/rtree"
)

// Deduplicate drops points lying strictly closer than minSeparation to a point
// that has already been kept. Points are scanned in input order so the first
// point of each cluster survives. Locked points are always kept and are
// seeded before the scan, so an unlocked point near a locked one is dropped
// even if it comes first.
//
// The returned slice preserves input order. The input is returned unchanged
// when minSeparation <= 0 or there are fewer than two points.
func Deduplicate(points []*Point, minSeparation float64) []*Point {
	if minSeparation <= 0 || len(points) < 2 {
		return points
	}
	limit := minSeparation * minSeparation

	// The index holds every point; only entries already marked keep count
	// as neighbours.
	idx := bulkIndex(points)
	keep := make([]bool, len(points))
	for i, p := range points {
		if p.Locked {
			keep[i] = true
		}
	}

	for i, p := range points {
		if p.Locked {
			continue
		}
		near := false
		idx.RangeSearch(squareBox(p.X, p.Y, minSeparation), func(j int) error {
			if j == i || !keep[j] {
				return nil
			}
			q := points[j]
			dx, dy := p.X-q.X, p.Y-q.Y
			if dx*dx+dy*dy < limit {
				near = true
				return rtree.Stop
			}
			return nil
		})
		if near {
			continue
		}
		keep[i] = true
	}

	out := make([]*Point, 0, len(points))
	for i, p := range points {
		if keep[i] {
			out = append(out, p)
		}
	}
	Logger().Debug("deduplicated", "in", len(points), "out", len(out), "min_separation", minSeparation)
	return out
}
