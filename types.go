package main

import (
	"image"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jbeda/geom"

	"pointpath/internal/editor"
	"pointpath/internal/extract"
)

type model struct {
	width      int
	height     int
	cursorX    int
	cursorY    int
	panX       int
	panY       int
	zoom       float64 // image pixels per terminal column
	zPanMode   bool
	mode       Mode
	help       bool
	helpScroll int

	editor      *editor.Editor
	config      *Config
	projectPath string
	image       image.Image
	showImage   bool

	promptOp PromptOp
	input    textinput.Model

	insertAfter int // anchor id while in ModeInsert
	moveFrom    geom.Coord // cursor world position when the move began
	moveAnchor  geom.Coord // grabbed point position when the move began

	errorMessage   string
	successMessage string

	startup tea.Cmd
}

// extractDoneMsg carries a finished extraction back to the UI goroutine.
type extractDoneMsg struct {
	path   string
	img    image.Image
	result extract.Result
	err    error
}

type boundsTickMsg time.Time
