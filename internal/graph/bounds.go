package graph

import (
	"fmt"
	"math"

	"github.com/jbeda/geom"
)

// MinBoundsPoints is the number of points needed before bounds are reported.
const MinBoundsPoints = 3

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y, W, H float64
}

func rectFrom(r geom.Rect) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Width(), H: r.Height()}
}

// Extent returns the tight bounding rectangle of any non-empty set of points.
func Extent(points []*Point) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r := geom.Rect{Min: points[0].Coord, Max: points[0].Coord}
	for _, p := range points[1:] {
		r.ExpandToContainCoord(p.Coord)
	}
	return rectFrom(r), true
}

// ComputeBounds returns the tight bounding rectangle of the points. It
// reports false ("not yet computed") for fewer than MinBoundsPoints points.
func ComputeBounds(points []*Point) (Rect, bool) {
	if len(points) < MinBoundsPoints {
		return Rect{}, false
	}
	return Extent(points)
}

func (r Rect) Scale(f float64) Rect {
	return Rect{X: r.X * f, Y: r.Y * f, W: r.W * f, H: r.H * f}
}

// Round rounds every field to n decimal places.
func (r Rect) Round(n int) Rect {
	return Rect{X: round(r.X, n), Y: round(r.Y, n), W: round(r.W, n), H: round(r.H, n)}
}

// Contains reports whether (x, y) lies within the rectangle, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func (r Rect) Center() geom.Coord {
	return geom.Coord{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g x %g)", r.X, r.Y, r.W, r.H)
}

func round(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}
