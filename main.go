package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"pointpath/internal/editor"
	"pointpath/internal/graph"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (default ~/"+configFileName+")")
		opts       headlessOptions
		headless   = flag.Bool("headless", false, "run without the terminal UI and exit")
		logPath    = flag.String("log", "", "append logs to this file")
		debug      = flag.Bool("debug", false, "log pipeline stages at debug level")
	)
	flag.StringVar(&opts.image, "image", "", "image to extract points from")
	flag.StringVar(&opts.project, "project", "", "project file to open")
	flag.StringVar(&opts.gcode, "gcode", "", "write G-code to this file (headless)")
	flag.StringVar(&opts.png, "png", "", "export a PNG preview to this file (headless)")
	flag.StringVar(&opts.pdf, "pdf", "", "export a PDF preview to this file (headless)")
	flag.StringVar(&opts.save, "save", "", "save the project to this file (headless)")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	closeLog, err := setupLogging(*logPath, *debug, *headless)
	if err != nil {
		log.Fatal(err)
	}

	e := editor.New(config.editorConfig())
	if *headless {
		err := runHeadless(os.Stdout, config, e, opts)
		closeLog()
		if err != nil {
			fmt.Fprintln(os.Stderr, "pointpath:", err)
			os.Exit(1)
		}
		return
	}
	defer closeLog()

	m := initialModel(config, e)
	switch {
	case opts.project != "":
		if err := e.Load(opts.project); err != nil {
			log.Fatal(err)
		}
		m.projectPath = opts.project
		m.image = loadBackground(e)
	case opts.image != "":
		e.NewProject()
		m.mode = ModeBusy
		m.successMessage = "Extracting points from " + opts.image
		m.startup = extractImage(opts.image, config.extractConfig(config.PointDensity))
	default:
		e.NewProject()
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

// setupLogging installs the shared logger. The terminal UI owns stdout, so
// without -log it logs nothing; headless runs log to stderr.
func setupLogging(path string, debug, headless bool) (func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var w io.Writer
	closeFn := func() {}
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case headless:
		w = os.Stderr
	default:
		return closeFn, nil
	}

	graph.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return closeFn, nil
}
