package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeMove
	ModeInsert
	ModeInput
	ModeBusy
)

// PromptOp is what the text prompt's value is used for.
type PromptOp int

const (
	PromptSave PromptOp = iota
	PromptOpen
	PromptImage
	PromptSavePNG
	PromptSavePDF
	PromptSaveGCode
	PromptCounter
	PromptDensity
)

const (
	cellAspect = 2.0 // terminal cells are about twice as tall as wide
	minZoom    = 0.05
	maxZoom    = 500.0
	zoomStep   = 1.5
)

const (
	projectExt = ".json"
	gcodeExt   = ".nc"
	pngExt     = ".png"
	pdfExt     = ".pdf"
)

// imageShades runs from light to dark.
const imageShades = " .:-=+*#%@"

var helpLines = []string{
	"pointpath Help",
	"==============",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Move cursor around the screen",
	"  Shift+h/j/k/l    Move cursor 2x faster (hold Shift with direction keys)",
	"  z                Toggle pan mode (direction keys pan the view)",
	"  +/-              Zoom in/out around the cursor",
	"  0                Fit the image (or the points) to the screen",
	"",
	"Point Operations:",
	"-----------------",
	"  a                Add a point at the cursor",
	"  i                Insert after the point under the cursor",
	"                   - Press 'i' on a point to start",
	"                   - Move, then 'i' or Enter to place the new point",
	"  d/x              Delete the point under the cursor (neighbours are joined)",
	"  m                Move the point under the cursor (mouse drag works too)",
	"  Space            Lock/unlock the point under the cursor",
	"",
	"Move Mode:",
	"----------",
	"  h/←/j/↓/k/↑/l/→  Move the point",
	"  Enter            Finish moving and return to normal mode",
	"  Esc              Cancel move and return to normal mode",
	"",
	"Path Operations:",
	"----------------",
	"  r                Recalculate the path (nearest neighbour)",
	"  D                Clean: drop points closer than the point density",
	"  p                Set the point density",
	"  c                Give the point under the cursor the next connection id",
	"  R                Relink the path by connection id",
	"  C                Clear all connection ids",
	"  B                Cut the path after the point under the cursor",
	"  X                Remove every link",
	"  #                Set the connection counter",
	"  v                Validate the path (press again to hide)",
	"  b                Refresh the bounds now",
	"  O                Switch the origin between center and top-left",
	"",
	"File Operations:",
	"----------------",
	"  I                Load an image and extract points from it",
	"  s                Save project",
	"  o                Open project",
	"  n                New empty project (keeps the image)",
	"  g                Write G-code to a file and copy it to the clipboard",
	"  S                Export as PNG image",
	"  P                Export as PDF",
	"",
	"General:",
	"  u/Ctrl+Z         Undo last action",
	"  U/Ctrl+Y         Redo last undone action",
	"  Z                Revert the last rebuild, clean, relink or unlink",
	"  t                Show/hide the image behind the path",
	"  Esc              Clear messages/cancel current operation",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}
