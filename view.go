package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pointpath/internal/gcode"
)

// layer orders what a cell shows. Higher layers win.
type layer int

const (
	layerEmpty layer = iota
	layerImage
	layerLink
	layerPoint
	layerLocked
	layerInvalid
	layerSelected
)

type cell struct {
	ch    rune
	layer layer
}

var (
	imageStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	linkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	pointStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	invalidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	hintStyle     = lipgloss.NewStyle().Faint(true)
)

func (l layer) style() (lipgloss.Style, bool) {
	switch l {
	case layerImage:
		return imageStyle, true
	case layerLink:
		return linkStyle, true
	case layerPoint:
		return pointStyle, true
	case layerLocked:
		return lockedStyle, true
	case layerInvalid:
		return invalidStyle, true
	case layerSelected:
		return selectedStyle, true
	}
	return lipgloss.Style{}, false
}

func (l layer) glyph() rune {
	switch l {
	case layerLocked:
		return '@'
	case layerInvalid:
		return 'x'
	case layerSelected:
		return '*'
	default:
		return 'o'
	}
}

type grid struct {
	w, h  int
	cells [][]cell
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, cells: make([][]cell, h)}
	for y := range g.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{ch: ' '}
		}
		g.cells[y] = row
	}
	return g
}

func (g *grid) set(x, y int, ch rune, l layer) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	if l >= g.cells[y][x].layer {
		g.cells[y][x] = cell{ch: ch, layer: l}
	}
}

// line draws a link with Bresenham's algorithm. Segments entirely off one
// side of the grid are skipped.
func (g *grid) line(x0, y0, x1, y1 int) {
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) ||
		(x0 >= g.w && x1 >= g.w) || (y0 >= g.h && y1 >= g.h) {
		return
	}
	ch := linkGlyph(x1-x0, y1-y0)

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		g.set(x0, y0, ch, layerLink)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func linkGlyph(dx, dy int) rune {
	switch {
	case abs(dy)*2 < abs(dx):
		return '-'
	case abs(dx)*2 < abs(dy):
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (m model) renderCanvas(w, h int) *grid {
	g := newGrid(w, h)

	if m.showImage && m.image != nil {
		b := m.image.Bounds()
		shades := []rune(imageShades)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := m.toWorld(x, y)
				px, py := b.Min.X+int(c.X), b.Min.Y+int(c.Y)
				if c.X < 0 || c.Y < 0 || px >= b.Max.X || py >= b.Max.Y {
					continue
				}
				lum := color.GrayModel.Convert(m.image.At(px, py)).(color.Gray).Y
				i := int(255-lum) * (len(shades) - 1) / 255
				if i > 0 {
					g.set(x, y, shades[i], layerImage)
				}
			}
		}
	}

	gr := m.editor.Graph()
	if gr == nil {
		return g
	}
	for _, p := range gr.Points() {
		if q := gr.Next(p); q != nil {
			x0, y0 := m.toCell(p.X, p.Y)
			x1, y1 := m.toCell(q.X, q.Y)
			g.line(x0, y0, x1, y1)
		}
	}

	highlighted := m.editor.Highlighted()
	moving, _ := m.editor.Dragging()
	for _, p := range gr.Points() {
		l := layerPoint
		switch {
		case m.mode == ModeMove && p.ID == moving, m.mode == ModeInsert && p.ID == m.insertAfter:
			l = layerSelected
		case highlighted[p.ID]:
			l = layerInvalid
		case p.Locked:
			l = layerLocked
		}
		x, y := m.toCell(p.X, p.Y)
		g.set(x, y, l.glyph(), l)
	}
	return g
}

// render turns the grid into styled text, batching runs of the same layer.
func (g *grid) render(cursorX, cursorY int) string {
	var sb strings.Builder
	for y, row := range g.cells {
		if y > 0 {
			sb.WriteString("\n")
		}
		var run []rune
		runLayer := layerEmpty
		flush := func() {
			if len(run) == 0 {
				return
			}
			if st, ok := runLayer.style(); ok {
				sb.WriteString(st.Render(string(run)))
			} else {
				sb.WriteString(string(run))
			}
			run = run[:0]
		}
		for x, c := range row {
			if x == cursorX && y == cursorY {
				flush()
				ch := c.ch
				if ch == ' ' {
					ch = '+'
				}
				sb.WriteString(cursorStyle.Render(string(ch)))
				continue
			}
			if c.layer != runLayer {
				flush()
				runLayer = c.layer
			}
			run = append(run, c.ch)
		}
		flush()
	}
	return sb.String()
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}

	w, h := m.canvasSize()
	var result strings.Builder
	result.WriteString(m.renderCanvas(w, h).render(m.cursorX, m.cursorY))
	result.WriteString("\n")
	result.WriteString(lipgloss.NewStyle().MaxWidth(w).Render(m.statusLine()))
	return result.String()
}

func (m model) promptLabel() string {
	switch m.promptOp {
	case PromptSave:
		return "Save project"
	case PromptOpen:
		return "Open project"
	case PromptImage:
		return "Load image"
	case PromptSavePNG:
		return "Export PNG"
	case PromptSavePDF:
		return "Export PDF"
	case PromptSaveGCode:
		return "Write G-code"
	case PromptCounter:
		return "Connection counter"
	case PromptDensity:
		return "Point density"
	}
	return "Input"
}

func (m model) statusLine() string {
	var statusLine string
	switch m.mode {
	case ModeInput:
		statusLine = fmt.Sprintf("Mode: FILE | %s: %s | Enter=confirm, Esc=cancel", m.promptLabel(), m.input.View())
		if m.errorMessage != "" {
			statusLine += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
		}
		return statusLine
	case ModeBusy:
		return "Mode: BUSY | " + m.successMessage
	case ModeMove:
		id, _ := m.editor.Dragging()
		statusLine = fmt.Sprintf("Mode: MOVE | Point %d | %s | hjkl/arrows=move, Enter=finish, Esc=cancel", id, m.machinePosition())
		if m.errorMessage != "" {
			statusLine += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
		}
		return statusLine
	case ModeInsert:
		return fmt.Sprintf("Mode: INSERT | After point %d | %s | hjkl/arrows=move, i/Enter=place, Esc=cancel", m.insertAfter, m.machinePosition())
	}

	modeStr := m.modeString()
	if m.zPanMode {
		modeStr = "PAN"
	}
	status := fmt.Sprintf("Mode: %s | Cursor: (%d,%d) %s | Points: %d", modeStr, m.cursorX, m.cursorY, m.machinePosition(), len(m.editor.Path()))
	if in, ok := m.editor.BoundsInches(); ok {
		status += fmt.Sprintf(" | Bounds: %gx%g in", in.W, in.H)
	}
	if n := m.editor.ConnectionCounter(); n > 0 {
		status += fmt.Sprintf(" | Conn: %d", n)
	}
	if p := m.pointUnderCursor(); p != nil {
		status += fmt.Sprintf(" | Point %d", p.ID)
		if p.Locked {
			status += " (locked)"
		}
		if p.Assigned() {
			status += fmt.Sprintf(" conn %d", p.Conn)
		}
	}
	if m.successMessage != "" {
		status += " | " + successStyle.Render(m.successMessage)
	}
	if m.errorMessage != "" {
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	} else if m.successMessage == "" {
		status += " | " + hintStyle.Render("? for help | q to quit")
	}
	return status
}

// machinePosition formats the cursor in machine coordinates, or in image
// pixels before an image size is known.
func (m model) machinePosition() string {
	c := m.cursorWorld()
	pos, err := m.editor.MachinePosition(c.X, c.Y)
	if err != nil {
		return fmt.Sprintf("px %s %s", gcode.FormatNumber(c.X), gcode.FormatNumber(c.Y))
	}
	return fmt.Sprintf("X%s Y%s", gcode.FormatNumber(pos.X), gcode.FormatNumber(pos.Y))
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeMove:
		return "MOVE"
	case ModeInsert:
		return "INSERT"
	case ModeInput:
		return "FILE"
	case ModeBusy:
		return "BUSY"
	default:
		return "UNKNOWN"
	}
}

func (m model) helpView() string {
	// Calculate visible area
	visibleHeight := m.height - 1 // Leave room for status line
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	startLine := m.helpScroll
	endLine := startLine + visibleHeight
	if startLine >= len(helpLines) {
		startLine = len(helpLines) - visibleHeight
		if startLine < 0 {
			startLine = 0
		}
		endLine = startLine + visibleHeight
	}
	if endLine > len(helpLines) {
		endLine = len(helpLines)
	}

	var visibleLines []string
	if startLine < len(helpLines) {
		visibleLines = helpLines[startLine:endLine]
	}
	result := strings.Join(visibleLines, "\n")

	statusLine := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		startLine+1, endLine, len(helpLines))
	result += "\n" + statusLine

	return result
}
