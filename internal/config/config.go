// Package config loads the optional per-project .tscaffold.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is looked up in the project directory.
const FileName = ".tscaffold.yaml"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds project-level settings. Command-line flags override it.
type Config struct {
	TestFile string        `yaml:"test_file"`
	Timeout  time.Duration `yaml:"timeout"`
	Color    string        `yaml:"color"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		TestFile: "test.js",
		Timeout:  30 * time.Second,
		Color:    ColorAuto,
	}
}

// Load reads FileName from dir, filling unset fields with defaults. A
// missing file is not an error.
func Load(dir string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	if file.TestFile != "" {
		cfg.TestFile = file.TestFile
	}
	if file.Timeout != 0 {
		cfg.Timeout = file.Timeout
	}
	if file.Color != "" {
		cfg.Color = file.Color
	}
	return cfg, cfg.Validate()
}

// Validate checks field values.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", c.Color)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	if c.TestFile == "" || filepath.IsAbs(c.TestFile) {
		return fmt.Errorf("test_file must be a relative path, got %q", c.TestFile)
	}
	return nil
}
