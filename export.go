package main

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"pointpath/internal/editor"
	"pointpath/internal/extract"
	"pointpath/internal/graph"
	"pointpath/internal/preview"
)

var errNoFilename = errors.New("Please enter a filename")

// resolveOutput gives name the extension ext when it has none and puts bare
// file names in the save directory.
func (c *Config) resolveOutput(name, ext string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errNoFilename
	}
	if filepath.Ext(name) == "" {
		name += ext
	}
	return c.GetSavePath(name), nil
}

// resolveInput finds an existing file, trying the name as typed, then with
// ext added, then both again inside the save directory.
func (c *Config) resolveInput(name, ext string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errNoFilename
	}
	candidates := []string{name}
	if ext != "" && filepath.Ext(name) == "" {
		candidates = append(candidates, name+ext)
	}
	if c.SaveDirectory != "" && !filepath.IsAbs(name) {
		for _, n := range candidates {
			candidates = append(candidates, filepath.Join(c.SaveDirectory, n))
		}
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("File %s not found", name)
}

// writeGCode writes the path's G-code to path and returns it.
func writeGCode(e *editor.Editor, path string) (string, error) {
	code, err := e.PathCode()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return "", err
	}
	graph.Logger().Info("gcode written", "path", path, "lines", strings.Count(code, "\n"))
	return code, nil
}

func previewOptions(e *editor.Editor) preview.Options {
	return preview.Options{
		Highlight: e.Highlighted(),
		Labels:    true,
	}
}

func exportPNG(e *editor.Editor, path string) error {
	if e.Graph() == nil {
		return editor.ErrUninitialized
	}
	return preview.SavePNG(path, e.Graph(), previewOptions(e))
}

func exportPDF(e *editor.Editor, path string) error {
	if e.Graph() == nil {
		return editor.ErrUninitialized
	}
	return preview.PDF(path, e.Graph(), previewOptions(e))
}

// extractFile decodes an image and runs the extraction pipeline on it,
// blocking until the worker is done.
func extractFile(path string, cfg extract.Config) (image.Image, extract.Result, error) {
	img, format, err := extract.DecodeFile(path)
	if err != nil {
		return nil, extract.Result{}, err
	}
	graph.Logger().Debug("image decoded", "path", path, "format", format)
	res, err := extract.Start(img, cfg).Wait()
	if err != nil {
		return nil, extract.Result{}, err
	}
	return img, res, nil
}

// extractImage runs extractFile off the UI goroutine. The result comes back
// as an extractDoneMsg.
func extractImage(path string, cfg extract.Config) tea.Cmd {
	return func() tea.Msg {
		img, res, err := extractFile(path, cfg)
		return extractDoneMsg{path: path, img: img, result: res, err: err}
	}
}

// adoptExtraction makes a finished extraction the editor's live path.
func adoptExtraction(e *editor.Editor, path string, res extract.Result) error {
	if err := e.Adopt(res); err != nil {
		return err
	}
	e.SetImage(path, res.ImageSize)
	return nil
}

// loadBackground decodes the image a project refers to, for display only.
func loadBackground(e *editor.Editor) image.Image {
	path := e.Meta().ImagePath
	if path == "" {
		return nil
	}
	img, _, err := extract.DecodeFile(path)
	if err != nil {
		graph.Logger().Warn("project image not loaded", "path", path, "err", err)
		return nil
	}
	return img
}
