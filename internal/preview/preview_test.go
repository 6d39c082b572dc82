package preview

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"pointpath/internal/graph"
)

func path3() *graph.Graph {
	g := graph.New()
	g.Add(0, 0)
	g.Add(100, 0)
	g.Add(100, 50)
	g.BuildNearestNeighbor()
	return g
}

func TestPNG(t *testing.T) {
	g := path3()
	var buf bytes.Buffer
	err := PNG(&buf, g, Options{Width: 200, Height: 120, Margin: 10, Labels: true, Highlight: map[int]bool{2: true}})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 120 {
		t.Fatalf("size = %v", b)
	}

	// The first point maps to the top-left of the fitted area.
	tr := fit(graph.Rect{W: 100, H: 50}, 200, 120, 10)
	x, y := tr.apply(g.Get(1))
	r, gr, b, _ := img.At(int(x), int(y)).RGBA()
	if r == 0xffff && gr == 0xffff && b == 0xffff {
		t.Errorf("no point drawn at (%v, %v)", x, y)
	}
}

func TestFit(t *testing.T) {
	tr := fit(graph.Rect{X: 10, Y: 10, W: 100, H: 50}, 220, 220, 10)
	if tr.scale != 2 {
		t.Errorf("scale = %v", tr.scale)
	}
	x, y := tr.apply(graph.Restore(1, 10, 10, false, -1, 0, 0))
	if x != 10 || y != 60 {
		t.Errorf("corner at (%v, %v)", x, y)
	}
}

func TestSaveFiles(t *testing.T) {
	dir := t.TempDir()
	g := path3()

	pngPath := filepath.Join(dir, "out.png")
	if err := SavePNG(pngPath, g, Options{}); err != nil {
		t.Fatal(err)
	}
	pdfPath := filepath.Join(dir, "out.pdf")
	if err := PDF(pdfPath, g, Options{Labels: true}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("not a PDF: %q", data[:min(len(data), 8)])
	}
}

func TestEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(&buf, graph.New(), Options{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("PNG err = %v", err)
	}
	if err := PDF(filepath.Join(t.TempDir(), "x.pdf"), graph.New(), Options{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("PDF err = %v", err)
	}
}
