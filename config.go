package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pointpath/internal/editor"
	"pointpath/internal/extract"
	"pointpath/internal/gcode"
	"pointpath/internal/graph"
	"pointpath/internal/history"
	"pointpath/internal/project"
)

const configFileName = ".pointpath.yaml"

type Config struct {
	SaveDirectory  string        `yaml:"save_directory"`
	PointDensity   float64       `yaml:"point_density"`
	PixelsPerInch  float64       `yaml:"pixels_per_inch"`
	Origin         string        `yaml:"origin"`
	HistoryLimit   int           `yaml:"history_limit"`
	BoundsInterval time.Duration `yaml:"bounds_interval"`
	GCodeCommand   string        `yaml:"gcode_command"`
	EdgeThreshold  float64       `yaml:"edge_threshold"`
	SampleStride   int           `yaml:"sample_stride"`
	MaxImageDim    int           `yaml:"max_image_dim"`
	HitRadius      float64       `yaml:"hit_radius"`

	origin graph.Origin
}

func defaultConfig() *Config {
	return &Config{
		PointDensity:   project.DefaultPointDensity,
		PixelsPerInch:  50,
		Origin:         graph.Center.String(),
		HistoryLimit:   history.DefaultLimit,
		BoundsInterval: time.Second,
		GCodeCommand:   gcode.DefaultCommand,
		EdgeThreshold:  100,
		SampleStride:   1,
		MaxImageDim:    1000,
		HitRadius:      3.5,
		origin:         graph.Center,
	}
}

// loadConfig reads path, or ~/.pointpath.yaml when path is empty. A missing
// or unreadable file yields the defaults. A file that exists but does not
// parse is an error; the defaults are still returned alongside it.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	homeDir, _ := os.UserHomeDir()
	if path == "" {
		if homeDir == "" {
			return config, nil
		}
		path = filepath.Join(homeDir, configFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, nil
	}

	loaded := defaultConfig()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return config, fmt.Errorf("config %s: %w", path, err)
	}
	if err := loaded.normalize(homeDir); err != nil {
		return config, fmt.Errorf("config %s: %w", path, err)
	}
	return loaded, nil
}

func (c *Config) normalize(homeDir string) error {
	origin, err := graph.ParseOrigin(c.Origin)
	if err != nil {
		return err
	}
	c.origin = origin

	if value := c.SaveDirectory; value != "" {
		if strings.HasPrefix(value, "~") && homeDir != "" {
			value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
		}
		if !filepath.IsAbs(value) {
			if absPath, err := filepath.Abs(value); err == nil {
				value = absPath
			}
		}
		c.SaveDirectory = value
	}

	def := defaultConfig()
	if c.PointDensity < 0 {
		return fmt.Errorf("point_density must not be negative, got %v", c.PointDensity)
	}
	if c.PixelsPerInch <= 0 {
		c.PixelsPerInch = def.PixelsPerInch
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = def.HistoryLimit
	}
	if c.BoundsInterval <= 0 {
		c.BoundsInterval = def.BoundsInterval
	}
	if strings.TrimSpace(c.GCodeCommand) == "" {
		c.GCodeCommand = def.GCodeCommand
	}
	if c.SampleStride < 1 {
		c.SampleStride = 1
	}
	if c.HitRadius <= 0 {
		c.HitRadius = def.HitRadius
	}
	return nil
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) || filepath.Dir(filename) != "." {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

func (c *Config) editorConfig() editor.Config {
	return editor.Config{
		PointDensity:  c.PointDensity,
		PixelsPerInch: c.PixelsPerInch,
		Origin:        c.origin,
		HistoryLimit:  c.HistoryLimit,
		HitRadius:     c.HitRadius,
		GCodeCommand:  c.GCodeCommand,
	}
}

// extractConfig uses the editor's current density so a changed density
// applies to the next image.
func (c *Config) extractConfig(density float64) extract.Config {
	return extract.Config{
		Extractor: &extract.EdgeExtractor{
			Threshold: c.EdgeThreshold,
			Stride:    c.SampleStride,
			MaxDim:    c.MaxImageDim,
		},
		MinSeparation: density,
	}
}
