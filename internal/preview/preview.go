// Package preview renders a point path to PNG or PDF for hand-off. It is a
// snapshot export, not an interactive view.
package preview

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"pointpath/internal/graph"
)

var ErrEmpty = errors.New("nothing to export")

type Options struct {
	Width, Height int
	Margin        float64
	PointRadius   float64
	// Highlight marks points drawn in the error colour.
	Highlight map[int]bool
	// Labels draws each point id next to it.
	Labels bool
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.Margin <= 0 {
		o.Margin = 20
	}
	if o.PointRadius <= 0 {
		o.PointRadius = 3
	}
	return o
}

var (
	linkColor      = color.RGBA{R: 40, G: 90, B: 200, A: 255}
	pointColor     = color.Black
	lockedColor    = color.RGBA{R: 0, G: 150, B: 60, A: 255}
	highlightColor = color.RGBA{R: 220, G: 30, B: 30, A: 255}
)

func colorOf(p *graph.Point, opts Options) color.Color {
	switch {
	case opts.Highlight[p.ID]:
		return highlightColor
	case p.Locked:
		return lockedColor
	default:
		return pointColor
	}
}

// transform maps graph coordinates into a w x h area, keeping aspect ratio.
type transform struct {
	scale, dx, dy float64
}

func fit(r graph.Rect, w, h, margin float64) transform {
	availW, availH := w-2*margin, h-2*margin
	scale := 1.0
	switch {
	case r.W > 0 && r.H > 0:
		scale = min(availW/r.W, availH/r.H)
	case r.W > 0:
		scale = availW / r.W
	case r.H > 0:
		scale = availH / r.H
	}
	return transform{
		scale: scale,
		dx:    margin + (availW-r.W*scale)/2 - r.X*scale,
		dy:    margin + (availH-r.H*scale)/2 - r.Y*scale,
	}
}

func (t transform) apply(p *graph.Point) (float64, float64) {
	return p.X*t.scale + t.dx, p.Y*t.scale + t.dy
}

func layout(g *graph.Graph, w, h, margin float64) (transform, error) {
	r, ok := graph.Extent(g.Points())
	if !ok {
		return transform{}, ErrEmpty
	}
	return fit(r, w, h, margin), nil
}

func render(g *graph.Graph, opts Options) (*gg.Context, error) {
	opts = opts.withDefaults()
	t, err := layout(g, float64(opts.Width), float64(opts.Height), opts.Margin)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetLineWidth(1.0)
	dc.SetColor(linkColor)
	for _, p := range g.Points() {
		if q := g.Next(p); q != nil {
			x1, y1 := t.apply(p)
			x2, y2 := t.apply(q)
			dc.DrawLine(x1, y1, x2, y2)
			dc.Stroke()
		}
	}

	for _, p := range g.Points() {
		x, y := t.apply(p)
		dc.SetColor(colorOf(p, opts))
		dc.DrawCircle(x, y, opts.PointRadius)
		dc.Fill()
	}

	if opts.Labels {
		ttfFont, err := truetype.Parse(gomono.TTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font: %v", err)
		}
		dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
			Size:    9,
			DPI:     72,
			Hinting: font.HintingFull,
		}))
		dc.SetColor(color.Black)
		for _, p := range g.Points() {
			x, y := t.apply(p)
			dc.DrawString(strconv.Itoa(p.ID), x+opts.PointRadius+1, y-opts.PointRadius-1)
		}
	}
	return dc, nil
}

// PNG encodes a rendering of g to w.
func PNG(w io.Writer, g *graph.Graph, opts Options) error {
	dc, err := render(g, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func SavePNG(path string, g *graph.Graph, opts Options) error {
	dc, err := render(g, opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

// PDF writes g onto one landscape A4 page. Width, Height and PointRadius are
// ignored; the page is laid out in millimetres.
func PDF(path string, g *graph.Graph, opts Options) error {
	const pageW, pageH, margin, radius = 297.0, 210.0, 10.0, 0.8
	t, err := layout(g, pageW, pageH, margin)
	if err != nil {
		return err
	}

	p := gofpdf.New("L", "mm", "A4", "")
	p.AddPage()
	p.SetLineWidth(0.3)
	p.SetDrawColor(int(linkColor.R), int(linkColor.G), int(linkColor.B))
	for _, pt := range g.Points() {
		if q := g.Next(pt); q != nil {
			x1, y1 := t.apply(pt)
			x2, y2 := t.apply(q)
			p.Line(x1, y1, x2, y2)
		}
	}

	for _, pt := range g.Points() {
		r, gr, b, _ := colorOf(pt, opts).RGBA()
		p.SetFillColor(int(r>>8), int(gr>>8), int(b>>8))
		x, y := t.apply(pt)
		p.Circle(x, y, radius, "F")
	}

	if opts.Labels {
		p.SetFont("Courier", "", 6)
		p.SetTextColor(0, 0, 0)
		for _, pt := range g.Points() {
			x, y := t.apply(pt)
			p.Text(x+radius+0.5, y-radius-0.5, strconv.Itoa(pt.ID))
		}
	}
	return p.OutputFileAndClose(path)
}
