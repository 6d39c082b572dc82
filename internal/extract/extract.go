// Package extract finds candidate path points in an image and runs the
// extract, deduplicate and build stages on a background worker.
package extract

import (
	"fmt"
	"image"
	"math"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jbeda/geom"
)

// Extractor turns an image into raw point positions in image pixels.
type Extractor interface {
	Extract(img image.Image) ([]geom.Coord, error)
}

// EdgeExtractor samples pixels whose Sobel gradient magnitude reaches
// Threshold. Only every Stride-th row and column is sampled. Offset is added
// to every point.
type EdgeExtractor struct {
	Threshold float64
	Stride    int
	Offset    geom.Coord
	// MaxDim bounds the longer image side the filter runs on. Larger images
	// are downscaled first and points are mapped back to full size.
	MaxDim int
}

func DefaultEdgeExtractor() *EdgeExtractor {
	return &EdgeExtractor{Threshold: 100, Stride: 1, MaxDim: 1000}
}

func (e *EdgeExtractor) Extract(img image.Image) ([]geom.Coord, error) {
	src := img
	scale := 1.0
	if e.MaxDim > 0 {
		src, scale = Downscale(img, e.MaxDim)
	}
	gray := Gray(src)
	stride := e.Stride
	if stride < 1 {
		stride = 1
	}

	b := gray.Bounds()
	var out []geom.Coord
	for y := b.Min.Y + 1; y < b.Max.Y-1; y += stride {
		for x := b.Min.X + 1; x < b.Max.X-1; x += stride {
			if sobel(gray, x, y) < e.Threshold {
				continue
			}
			out = append(out, geom.Coord{
				X: float64(x-b.Min.X)/scale + e.Offset.X,
				Y: float64(y-b.Min.Y)/scale + e.Offset.Y,
			})
		}
	}
	return out, nil
}

func sobel(g *image.Gray, x, y int) float64 {
	at := func(dx, dy int) float64 {
		return float64(g.GrayAt(x+dx, y+dy).Y)
	}
	gx := -at(-1, -1) - 2*at(-1, 0) - at(-1, 1) + at(1, -1) + 2*at(1, 0) + at(1, 1)
	gy := -at(-1, -1) - 2*at(0, -1) - at(1, -1) + at(-1, 1) + 2*at(0, 1) + at(1, 1)
	return math.Hypot(gx, gy)
}

// Gray converts img to 8-bit grayscale.
func Gray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, img, b.Min, draw.Src)
	return g
}

// Downscale shrinks img so its longer side is at most maxDim. It returns the
// image to use and the factor applied (1 when no scaling was needed).
func Downscale(img image.Image, maxDim int) (image.Image, float64) {
	b := img.Bounds()
	longest := b.Dx()
	if b.Dy() > longest {
		longest = b.Dy()
	}
	if maxDim <= 0 || longest <= maxDim {
		return img, 1
	}
	scale := float64(maxDim) / float64(longest)
	w := int(math.Max(1, math.Round(float64(b.Dx())*scale)))
	h := int(math.Max(1, math.Round(float64(b.Dy())*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, float64(w) / float64(b.Dx())
}

// DecodeFile opens and decodes an image. PNG, JPEG, GIF, BMP, TIFF and WebP
// are recognised.
func DecodeFile(path string) (image.Image, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return img, format, nil
}
