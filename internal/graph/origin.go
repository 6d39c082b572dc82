package graph

import (
	"fmt"
	"strings"

	"github.com/jbeda/geom"
)

// Origin names the coordinate frame a position is expressed in. The numeric
// values are the ones stored in project files.
type Origin int

const (
	Center Origin = iota
	TopLeft
)

func (o Origin) String() string {
	switch o {
	case Center:
		return "center"
	case TopLeft:
		return "top_left"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

func (o Origin) Valid() bool {
	return o == Center || o == TopLeft
}

// ParseOrigin accepts "center" or "top_left", case-insensitive, with "-" or
// a space allowed in place of the underscore.
func ParseOrigin(s string) (Origin, error) {
	norm := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "center", "centre":
		return Center, nil
	case "top_left", "topleft":
		return TopLeft, nil
	}
	return Center, fmt.Errorf("graph: unknown origin %q", s)
}

// Size is the extent of the source image in pixels.
type Size struct {
	W, H float64
}

func (s Size) Half() geom.Coord {
	return geom.Coord{X: s.W / 2, Y: s.H / 2}
}

// ConvertOrigin re-expresses c, given in the from frame, in the to frame.
// Only Center and TopLeft are supported.
func ConvertOrigin(c geom.Coord, from, to Origin, size Size) (geom.Coord, error) {
	switch {
	case from == to && from.Valid():
		return c, nil
	case from == TopLeft && to == Center:
		return c.Minus(size.Half()), nil
	case from == Center && to == TopLeft:
		return c.Plus(size.Half()), nil
	}
	return c, fmt.Errorf("%w: %s to %s", ErrUnsupportedOriginConversion, from, to)
}
