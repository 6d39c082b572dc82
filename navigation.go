package main

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jbeda/geom"

	"pointpath/internal/graph"
)

func (m *model) handleNavigation(key string, speed int) (tea.Model, tea.Cmd) {
	if m.zPanMode {
		return m.handlePan(key, speed), nil
	}
	return m.handleCursorMove(key, speed), nil
}

func (m *model) handlePan(key string, speed int) tea.Model {
	switch key {
	case "h", "left", "H", "shift+left":
		m.panX += speed
	case "l", "right", "L", "shift+right":
		m.panX -= speed
	case "k", "up", "K", "shift+up":
		m.panY += speed
	case "j", "down", "J", "shift+down":
		m.panY -= speed
	}
	return m
}

func (m *model) handleCursorMove(key string, speed int) tea.Model {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= speed
	case "l", "right", "L", "shift+right":
		m.cursorX += speed
	case "k", "up", "K", "shift+up":
		m.cursorY -= speed
	case "j", "down", "J", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
	return m
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

func isNavigationKey(key string) bool {
	switch key {
	case "h", "j", "k", "l", "H", "J", "K", "L",
		"left", "right", "up", "down",
		"shift+left", "shift+right", "shift+up", "shift+down":
		return true
	}
	return false
}

func (m *model) ensureCursorInBounds() {
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
	if m.width > 0 && m.cursorX >= m.width {
		m.cursorX = m.width - 1
	}
	// Leave room for status line
	maxY := m.height - 2
	if maxY < 0 {
		maxY = 0
	}
	if m.cursorY > maxY {
		m.cursorY = maxY
	}
}

// toWorld returns the image position at the centre of a screen cell.
func (m *model) toWorld(cx, cy int) geom.Coord {
	return geom.Coord{
		X: (float64(cx+m.panX) + 0.5) * m.zoom,
		Y: (float64(cy+m.panY) + 0.5) * m.zoom * cellAspect,
	}
}

// toCell returns the screen cell an image position falls in. The cell may be
// off screen.
func (m *model) toCell(x, y float64) (int, int) {
	return int(math.Floor(x/m.zoom)) - m.panX, int(math.Floor(y/(m.zoom*cellAspect))) - m.panY
}

func (m *model) cursorWorld() geom.Coord {
	return m.toWorld(m.cursorX, m.cursorY)
}

// canvasSize is the number of cells available for drawing.
func (m *model) canvasSize() (int, int) {
	w, h := m.width, m.height-1
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// fitView zooms so the image, or the points when there is no image, fills
// the screen.
func (m *model) fitView() {
	var r graph.Rect
	size := m.editor.ImageSize()
	if size.W > 0 && size.H > 0 {
		r = graph.Rect{W: size.W, H: size.H}
	} else if ext, ok := graph.Extent(m.editor.Path()); ok {
		r = ext
	} else {
		m.zoom, m.panX, m.panY = 1, 0, 0
		return
	}

	w, h := m.canvasSize()
	zoom := math.Max(r.W/float64(w), r.H/(float64(h)*cellAspect))
	m.zoom = clampZoom(zoom)
	m.panX = int(math.Floor(r.X / m.zoom))
	m.panY = int(math.Floor(r.Y / (m.zoom * cellAspect)))
}

// zoomBy scales the view around the cursor so the image position under it
// stays put.
func (m *model) zoomBy(factor float64) {
	anchor := m.cursorWorld()
	m.zoom = clampZoom(m.zoom / factor)
	m.panX = int(math.Floor(anchor.X/m.zoom)) - m.cursorX
	m.panY = int(math.Floor(anchor.Y/(m.zoom*cellAspect))) - m.cursorY
}

func clampZoom(z float64) float64 {
	if z < minZoom || math.IsNaN(z) {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}

// pointUnderCursor hit tests at the cursor. When zoomed out far enough that a
// cell is wider than the hit radius, any point drawn in the cursor cell
// counts.
func (m *model) pointUnderCursor() *graph.Point {
	c := m.cursorWorld()
	if p := m.editor.PointAt(c.X, c.Y); p != nil {
		return p
	}
	for _, p := range m.editor.Path() {
		if cx, cy := m.toCell(p.X, p.Y); cx == m.cursorX && cy == m.cursorY {
			return p
		}
	}
	return nil
}

// moveCursorTo places the cursor on the cell holding (x, y), panning when it
// is off screen.
func (m *model) moveCursorTo(x, y float64) {
	cx, cy := m.toCell(x, y)
	w, h := m.canvasSize()
	if cx < 0 || cx >= w {
		m.panX += cx - w/2
		cx = w / 2
	}
	if cy < 0 || cy >= h {
		m.panY += cy - h/2
		cy = h / 2
	}
	m.cursorX, m.cursorY = cx, cy
	m.ensureCursorInBounds()
}
