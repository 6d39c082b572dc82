// Package gcode turns an ordered point sequence into linear motion commands.
package gcode

import (
	"bufio"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jbeda/geom"

	"pointpath/internal/graph"
)

// DefaultCommand is the linear move word.
const DefaultCommand = "G1"

var ErrInvalidOrigin = errors.New("gcode: points must be in the center frame")

type Options struct {
	// Command replaces the move word; empty means DefaultCommand.
	Command string
}

func (o Options) command() string {
	if o.Command == "" {
		return DefaultCommand
	}
	return o.Command
}

// FormatNumber rounds v to three decimals and renders it compactly: integral
// values keep a bare trailing point ("50."), others use the shortest form
// ("12.5", "-3.142"). Negative zero renders as "0.".
func FormatNumber(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += "."
	}
	return s
}

// Coords extracts positions from points in order.
func Coords(points []*graph.Point) []geom.Coord {
	out := make([]geom.Coord, len(points))
	for i, p := range points {
		out[i] = p.Position()
	}
	return out
}

// Write emits one "<cmd> X<x> Y<y>" line per point, in order. Points are
// given in image pixels; origin must be graph.Center, in which case every
// point is shifted by half the image size so the image center is the machine
// zero.
func Write(w io.Writer, points []geom.Coord, size graph.Size, origin graph.Origin, opts Options) error {
	if origin != graph.Center {
		return ErrInvalidOrigin
	}
	half := size.Half()
	cmd := opts.command()

	bw := bufio.NewWriter(w)
	for _, p := range points {
		t := p.Minus(half)
		bw.WriteString(cmd)
		bw.WriteString(" X")
		bw.WriteString(FormatNumber(t.X))
		bw.WriteString(" Y")
		bw.WriteString(FormatNumber(t.Y))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Generate returns the program as a string with the default command.
func Generate(points []geom.Coord, size graph.Size, origin graph.Origin) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, points, size, origin, Options{}); err != nil {
		return "", err
	}
	return sb.String(), nil
}
