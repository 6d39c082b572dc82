package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pointpath/internal/editor"
	"pointpath/internal/graph"
)

func initialModel(config *Config, e *editor.Editor) model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	return model{
		mode:        ModeNormal,
		zoom:        1,
		editor:      e,
		config:      config,
		input:       ti,
		showImage:   true,
		insertAfter: graph.NoLink,
	}
}

func tickBounds(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return boundsTickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	if m.startup != nil {
		return tea.Batch(tickBounds(m.config.BoundsInterval), m.startup)
	}
	return tickBounds(m.config.BoundsInterval)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		first := m.width == 0
		m.width = msg.Width
		m.height = msg.Height
		if first {
			m.fitView()
		}
		m.ensureCursorInBounds()
		return m, nil

	case boundsTickMsg:
		m.editor.RefreshBounds()
		return m, tickBounds(m.config.BoundsInterval)

	case extractDoneMsg:
		m.mode = ModeNormal
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		if err := adoptExtraction(m.editor, msg.path, msg.result); err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.image = msg.img
		m.projectPath = ""
		m.fitView()
		m.successMessage = fmt.Sprintf("Extracted %d points (%d raw) in %s",
			msg.result.Kept, msg.result.Raw, msg.result.Elapsed.Round(time.Millisecond))
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.help {
			return m.handleHelpKey(msg)
		}
		switch m.mode {
		case ModeBusy:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ModeInput:
			return m.handleInputKey(msg)
		case ModeMove:
			return m.handleMoveKey(msg)
		case ModeInsert:
			return m.handleInsertKey(msg)
		default:
			return m.handleNormalKey(msg)
		}
	}

	if m.mode == ModeInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		visibleHeight := m.height - 1
		if visibleHeight < 1 {
			visibleHeight = 1
		}
		maxScroll := len(helpLines) - visibleHeight
		if maxScroll < 0 {
			maxScroll = 0
		}
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
	return m, nil
}

// fail shows err on the status line. It reports whether err was non-nil.
func (m *model) fail(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, editor.ErrUninitialized):
		m.errorMessage = "Load an image (I) or open a project (o) first"
	default:
		m.errorMessage = err.Error()
	}
	return true
}

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.errorMessage = ""
	m.successMessage = ""

	if isNavigationKey(key) {
		return m.handleNavigation(key, m.getMoveSpeed(key))
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.help = true
		m.helpScroll = 0
	case "esc":
		m.zPanMode = false
	case "z":
		m.zPanMode = !m.zPanMode
	case "+":
		m.zoomBy(zoomStep)
	case "-":
		m.zoomBy(1 / zoomStep)
	case "0":
		m.fitView()
	case "t":
		m.showImage = !m.showImage

	case "a":
		c := m.cursorWorld()
		if p, err := m.editor.AddPoint(c.X, c.Y); !m.fail(err) {
			m.successMessage = fmt.Sprintf("Added point %d", p.ID)
		}
	case "i":
		p := m.pointUnderCursor()
		if p == nil {
			m.errorMessage = "No point under cursor"
			break
		}
		m.insertAfter = p.ID
		m.mode = ModeInsert
	case "d", "x":
		p := m.pointUnderCursor()
		if p == nil {
			m.errorMessage = "No point under cursor"
			break
		}
		id := p.ID
		if err := m.editor.RemovePoint(id); !m.fail(err) {
			m.successMessage = fmt.Sprintf("Deleted point %d", id)
		}
	case "m":
		p := m.pointUnderCursor()
		if p == nil {
			m.errorMessage = "No point under cursor"
			break
		}
		m.beginMove(p)
	case " ":
		p := m.pointUnderCursor()
		if p == nil {
			m.errorMessage = "No point under cursor"
			break
		}
		if locked, err := m.editor.ToggleLock(p.ID); !m.fail(err) {
			if locked {
				m.successMessage = fmt.Sprintf("Locked point %d", p.ID)
			} else {
				m.successMessage = fmt.Sprintf("Unlocked point %d", p.ID)
			}
		}

	case "u", "ctrl+z":
		if !m.editor.CanUndo() {
			m.errorMessage = "Nothing to undo"
			break
		}
		if ok, err := m.editor.Undo(); !m.fail(err) && !ok {
			m.errorMessage = "Nothing to undo"
		}
	case "U", "ctrl+y":
		if !m.editor.CanRedo() {
			m.errorMessage = "Nothing to redo"
			break
		}
		if ok, err := m.editor.Redo(); !m.fail(err) && !ok {
			m.errorMessage = "Nothing to redo"
		}
	case "Z":
		if ok, err := m.editor.RevertBulk(); !m.fail(err) {
			if ok {
				m.successMessage = "Path restored"
			} else {
				m.errorMessage = "Nothing to revert"
			}
		}

	case "r":
		if err := m.editor.RecalcPath(); !m.fail(err) {
			m.successMessage = fmt.Sprintf("Path rebuilt through %d points", len(m.editor.Path()))
		}
	case "D":
		if n, err := m.editor.Clean(); !m.fail(err) {
			m.successMessage = fmt.Sprintf("Removed %d points closer than %g", n, m.editor.Config().PointDensity)
		}
	case "c":
		p := m.pointUnderCursor()
		if p == nil {
			m.errorMessage = "No point under cursor"
			break
		}
		if n, err := m.editor.AssignConnection(p.ID); !m.fail(err) {
			m.successMessage = fmt.Sprintf("Point %d is connection %d", p.ID, n)
		}
	case "R":
		if err := m.editor.RelinkByConnection(); !m.fail(err) {
			m.successMessage = "Path relinked by connection id"
		}
	case "B":
		p := m.pointUnderCursor()
		if p == nil {
			m.errorMessage = "No point under cursor"
			break
		}
		if err := m.editor.BreakAfter(p.ID); !m.fail(err) {
			m.successMessage = fmt.Sprintf("Path cut after point %d", p.ID)
		}
	case "X":
		if err := m.editor.Unlink(); !m.fail(err) {
			m.successMessage = "All links removed"
		}
	case "C":
		if err := m.editor.ClearConnections(); !m.fail(err) {
			m.successMessage = "Connection ids cleared"
		}
	case "v":
		shown, err := m.editor.ToggleValidation()
		if m.fail(err) {
			break
		}
		switch n := len(m.editor.ValidationErrors()); {
		case !shown:
			m.successMessage = "Validation hidden"
		case n == 0:
			m.successMessage = "Path is valid"
		default:
			m.errorMessage = fmt.Sprintf("%d problems: %s", n, summarizeViolations(m.editor.ValidationErrors()))
		}
	case "b":
		if r, ok := m.editor.RefreshBounds(); ok {
			in, _ := m.editor.BoundsInches()
			m.successMessage = fmt.Sprintf("Bounds %s px, %gx%g in", r, in.W, in.H)
		} else {
			m.errorMessage = fmt.Sprintf("Bounds need at least %d points", graph.MinBoundsPoints)
		}
	case "O":
		o := graph.TopLeft
		if m.editor.Config().Origin == graph.TopLeft {
			o = graph.Center
		}
		m.editor.SetOrigin(o)
		m.successMessage = "Origin: " + o.String()
	case "n":
		m.editor.NewProject()
		m.projectPath = ""
		m.successMessage = "New project"

	case "s":
		return m.prompt(PromptSave, m.defaultName())
	case "o":
		return m.prompt(PromptOpen, "")
	case "I":
		return m.prompt(PromptImage, "")
	case "g":
		return m.prompt(PromptSaveGCode, m.defaultName())
	case "S":
		return m.prompt(PromptSavePNG, m.defaultName())
	case "P":
		return m.prompt(PromptSavePDF, m.defaultName())
	case "p":
		return m.prompt(PromptDensity, strconv.FormatFloat(m.editor.Config().PointDensity, 'f', -1, 64))
	case "#":
		return m.prompt(PromptCounter, strconv.Itoa(m.editor.ConnectionCounter()))
	}
	return m, nil
}

func summarizeViolations(vs []graph.Violation) string {
	const shown = 3
	var parts []string
	for i, v := range vs {
		if i == shown {
			parts = append(parts, fmt.Sprintf("and %d more", len(vs)-shown))
			break
		}
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ", ")
}

func (m *model) defaultName() string {
	if m.projectPath != "" {
		return strings.TrimSuffix(filepath.Base(m.projectPath), filepath.Ext(m.projectPath))
	}
	if img := m.editor.Meta().ImagePath; img != "" {
		return strings.TrimSuffix(filepath.Base(img), filepath.Ext(img))
	}
	return ""
}

func (m model) prompt(op PromptOp, value string) (tea.Model, tea.Cmd) {
	m.promptOp = op
	m.mode = ModeInput
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

func (m model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.errorMessage = ""
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		return m.runPrompt(m.input.Value())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runPrompt carries out the prompt's operation. On error the prompt stays
// open so the value can be corrected.
func (m model) runPrompt(value string) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""
	done := func(format string, args ...interface{}) (tea.Model, tea.Cmd) {
		m.mode = ModeNormal
		m.input.Blur()
		m.successMessage = fmt.Sprintf(format, args...)
		return m, nil
	}

	switch m.promptOp {
	case PromptSave:
		path, err := m.config.resolveOutput(value, projectExt)
		if m.fail(err) || m.fail(m.editor.Save(path)) {
			return m, nil
		}
		m.projectPath = path
		return done("Saved to %s", path)

	case PromptOpen:
		path, err := m.config.resolveInput(value, projectExt)
		if m.fail(err) || m.fail(m.editor.Load(path)) {
			return m, nil
		}
		m.projectPath = path
		m.image = loadBackground(m.editor)
		m.fitView()
		return done("Opened %s (%d points)", path, len(m.editor.Path()))

	case PromptImage:
		path, err := m.config.resolveInput(value, "")
		if m.fail(err) {
			return m, nil
		}
		m.mode = ModeBusy
		m.input.Blur()
		m.successMessage = "Extracting points from " + path
		return m, extractImage(path, m.config.extractConfig(m.editor.Config().PointDensity))

	case PromptSaveGCode:
		path, err := m.config.resolveOutput(value, gcodeExt)
		if m.fail(err) {
			return m, nil
		}
		code, err := writeGCode(m.editor, path)
		if m.fail(err) {
			return m, nil
		}
		if err := clipboard.WriteAll(code); err != nil {
			return done("G-code written to %s (clipboard unavailable)", path)
		}
		return done("G-code written to %s and copied to clipboard", path)

	case PromptSavePNG:
		path, err := m.config.resolveOutput(value, pngExt)
		if m.fail(err) || m.fail(exportPNG(m.editor, path)) {
			return m, nil
		}
		return done("Exported to %s", path)

	case PromptSavePDF:
		path, err := m.config.resolveOutput(value, pdfExt)
		if m.fail(err) || m.fail(exportPDF(m.editor, path)) {
			return m, nil
		}
		return done("Exported to %s", path)

	case PromptDensity:
		d, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || d < 0 {
			m.errorMessage = "Point density must be a non-negative number"
			return m, nil
		}
		m.editor.SetPointDensity(d)
		return done("Point density %g", d)

	case PromptCounter:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			m.errorMessage = "Connection counter must be a whole number"
			return m, nil
		}
		if m.fail(m.editor.SetConnectionCounter(n)) {
			return m, nil
		}
		return done("Connection counter %d", m.editor.ConnectionCounter())
	}
	m.mode = ModeNormal
	return m, nil
}

// beginMove grabs p and enters move mode with the cursor on it.
func (m *model) beginMove(p *graph.Point) {
	grabbed, ok := m.editor.StartDrag(p.X, p.Y)
	if !ok {
		m.errorMessage = "No point under cursor"
		return
	}
	m.moveCursorTo(grabbed.X, grabbed.Y)
	m.moveFrom = m.cursorWorld()
	m.moveAnchor = grabbed.Position()
	m.mode = ModeMove
}

// dragToCursor keeps the grabbed point at the same offset from the cursor as
// when the move began.
func (m *model) dragToCursor() {
	delta := m.cursorWorld().Minus(m.moveFrom)
	to := m.moveAnchor.Plus(delta)
	m.fail(m.editor.DragTo(to.X, to.Y))
}

func (m model) handleMoveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case isNavigationKey(key):
		m.handleCursorMove(key, m.getMoveSpeed(key))
		m.dragToCursor()
	case msg.Type == tea.KeyEnter || key == "m":
		id, _ := m.editor.Dragging()
		m.editor.EndDrag()
		m.mode = ModeNormal
		m.successMessage = fmt.Sprintf("Moved point %d", id)
	case msg.Type == tea.KeyEsc:
		m.editor.CancelDrag()
		m.mode = ModeNormal
	case key == "ctrl+c":
		m.editor.CancelDrag()
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleInsertKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case isNavigationKey(key):
		return m.handleNavigation(key, m.getMoveSpeed(key))
	case msg.Type == tea.KeyEnter || key == "i":
		c := m.cursorWorld()
		p, err := m.editor.InsertAfter(m.insertAfter, c.X, c.Y)
		if !m.fail(err) {
			m.successMessage = fmt.Sprintf("Inserted point %d after %d", p.ID, m.insertAfter)
		}
		m.insertAfter = graph.NoLink
		m.mode = ModeNormal
	case msg.Type == tea.KeyEsc:
		m.insertAfter = graph.NoLink
		m.mode = ModeNormal
	case key == "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// handleMouse drags points with the left button.
func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.help || (m.mode != ModeNormal && m.mode != ModeMove) {
		return m, nil
	}
	m.cursorX, m.cursorY = msg.X, msg.Y
	m.ensureCursorInBounds()

	switch msg.Type {
	case tea.MouseLeft:
		if m.mode == ModeMove {
			m.dragToCursor()
			return m, nil
		}
		m.errorMessage = ""
		m.successMessage = ""
		if p := m.pointUnderCursor(); p != nil {
			m.startMouseDrag(p)
		}
	case tea.MouseMotion:
		if m.mode == ModeMove {
			m.dragToCursor()
		}
	case tea.MouseRelease:
		if m.mode == ModeMove {
			m.dragToCursor()
			m.editor.EndDrag()
			m.mode = ModeNormal
		}
	case tea.MouseWheelUp:
		m.zoomBy(zoomStep)
	case tea.MouseWheelDown:
		m.zoomBy(1 / zoomStep)
	}
	return m, nil
}

// startMouseDrag is beginMove without moving the cursor, so the point keeps
// its offset from the mouse.
func (m *model) startMouseDrag(p *graph.Point) {
	grabbed, ok := m.editor.StartDrag(p.X, p.Y)
	if !ok {
		return
	}
	m.moveFrom = m.cursorWorld()
	m.moveAnchor = grabbed.Position()
	m.mode = ModeMove
}
