// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/framedump/pkg/adapters/smartsource"
	"github.com/user/framedump/pkg/pipeline"
	"github.com/user/framedump/pkg/ports"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("config: invalid configuration")

// maxDigits keeps zero-padded indices within an int64.
const maxDigits = 18

// Config represents the full configuration for framedump.
type Config struct {
	// Input/Output
	Input     string `yaml:"input"`
	OutputDir string `yaml:"output_dir"`

	// Naming
	Prefix string `yaml:"prefix"`
	Digits int    `yaml:"digits"`

	// Encoding
	Format      string `yaml:"format"`
	JPEGQuality int    `yaml:"jpeg_quality"`

	// Decoding
	Backend string `yaml:"backend"`

	// Write behavior
	Overwrite    bool   `yaml:"overwrite"`
	OnWriteError string `yaml:"on_write_error"`

	// Reporting
	Summary  string `yaml:"summary"`
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		OutputDir:    "frames",
		Prefix:       "frame_",
		Digits:       4,
		Format:       "png",
		JPEGQuality:  90,
		Backend:      string(smartsource.BackendAuto),
		Overwrite:    true,
		OnWriteError: string(pipeline.WriteErrorAbort),
		LogLevel:     "info",
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
// Keys missing from the file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration can drive an extraction.
func (c Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: input video is required", ErrInvalid)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalid)
	}
	if strings.ContainsAny(c.Prefix, `/\`) {
		return fmt.Errorf("%w: prefix must not contain path separators: %q", ErrInvalid, c.Prefix)
	}
	if c.Digits < 1 || c.Digits > maxDigits {
		return fmt.Errorf("%w: digits must be between 1 and %d, got %d", ErrInvalid, maxDigits, c.Digits)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg_quality must be between 1 and 100, got %d", ErrInvalid, c.JPEGQuality)
	}
	if _, err := ports.ParseImageFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := smartsource.ParseBackend(c.Backend); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := pipeline.ParseWriteErrorPolicy(c.OnWriteError); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// ToExtractInput converts Config to pipeline.ExtractInput.
func (c Config) ToExtractInput() (pipeline.ExtractInput, error) {
	if err := c.Validate(); err != nil {
		return pipeline.ExtractInput{}, err
	}

	format, _ := ports.ParseImageFormat(c.Format)
	policy, _ := pipeline.ParseWriteErrorPolicy(c.OnWriteError)

	return pipeline.ExtractInput{
		InputPath:    c.Input,
		OutputDir:    c.OutputDir,
		Prefix:       c.Prefix,
		Digits:       c.Digits,
		Format:       format,
		JPEGQuality:  c.JPEGQuality,
		Overwrite:    c.Overwrite,
		OnWriteError: policy,
	}, nil
}

// SourceOptions returns the backend selection for smartsource.
func (c Config) SourceOptions() smartsource.Options {
	backend, err := smartsource.ParseBackend(c.Backend)
	if err != nil {
		backend = smartsource.BackendAuto
	}
	return smartsource.Options{Backend: backend}
}
