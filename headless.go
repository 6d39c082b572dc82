package main

import (
	"errors"
	"fmt"
	"io"

	"pointpath/internal/editor"
	"pointpath/internal/graph"
)

type headlessOptions struct {
	image   string
	project string
	gcode   string
	png     string
	pdf     string
	save    string
}

var errNoInput = errors.New("-headless needs -image or -project")

// runHeadless loads or extracts a path, writes every requested output and
// prints a summary to out.
func runHeadless(out io.Writer, config *Config, e *editor.Editor, opts headlessOptions) error {
	log := graph.Logger()

	switch {
	case opts.project != "":
		if err := e.Load(opts.project); err != nil {
			return err
		}
	case opts.image != "":
		_, res, err := extractFile(opts.image, config.extractConfig(config.PointDensity))
		if err != nil {
			return err
		}
		if err := adoptExtraction(e, opts.image, res); err != nil {
			return err
		}
		log.Info("points extracted", "path", opts.image, "raw", res.Raw, "kept", res.Kept, "elapsed", res.Elapsed)
	default:
		return errNoInput
	}

	violations, err := e.Validate()
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		log.Warn("path has problems", "count", len(violations), "first", violations[0].String())
	}

	if opts.gcode != "" {
		if _, err := writeGCode(e, opts.gcode); err != nil {
			return fmt.Errorf("gcode: %w", err)
		}
	}
	if opts.png != "" {
		if err := exportPNG(e, opts.png); err != nil {
			return fmt.Errorf("png: %w", err)
		}
	}
	if opts.pdf != "" {
		if err := exportPDF(e, opts.pdf); err != nil {
			return fmt.Errorf("pdf: %w", err)
		}
	}
	if opts.save != "" {
		if err := e.Save(opts.save); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}

	fmt.Fprintf(out, "points: %d\n", len(e.Path()))
	fmt.Fprintf(out, "problems: %d\n", len(violations))
	if in, ok := e.BoundsInches(); ok {
		fmt.Fprintf(out, "bounds: %gx%g in\n", in.W, in.H)
	}
	return nil
}
