// Package config holds the server configuration: sampling defaults, the
// descriptor layout and logging. Values come from built-in defaults, an
// optional JSON file and IMAGE_DENSE_* environment variables, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/image-dense-mcp/internal/dense"
	"github.com/ironsheep/image-dense-mcp/internal/imaging"
	"github.com/ironsheep/image-dense-mcp/internal/sift"
)

// Environment variables read by ApplyEnv and Load.
const (
	EnvConfigFile = "IMAGE_DENSE_CONFIG"
	EnvLogLevel   = "IMAGE_DENSE_LOG_LEVEL"
	EnvWorkers    = "IMAGE_DENSE_WORKERS"
	EnvPixelType  = "IMAGE_DENSE_PIXEL_TYPE"
	EnvBlurRadius = "IMAGE_DENSE_BLUR_RADIUS"
)

// Config holds the application configuration
type Config struct {
	Sampling SamplingConfig `json:"sampling"`
	SIFT     sift.Config    `json:"sift"`
	Log      LogConfig      `json:"log"`
}

// SamplingConfig holds the defaults applied when a tool call omits them
type SamplingConfig struct {
	Scale      float64 `json:"scale"`
	PeriodX    float64 `json:"period_x"`
	PeriodY    float64 `json:"period_y"`
	Workers    int     `json:"workers"`
	PixelType  string  `json:"pixel_type"`
	BlurRadius float64 `json:"blur_radius"`
}

// LogConfig holds logging options
type LogConfig struct {
	// Level is "info" or "debug".
	Level string `json:"level"`
}

// Default returns a configuration with default values
func Default() *Config {
	d := dense.DefaultConfig()
	return &Config{
		Sampling: SamplingConfig{
			Scale:      d.Scale,
			PeriodX:    d.PeriodX,
			PeriodY:    d.PeriodY,
			Workers:    1,
			PixelType:  string(imaging.PixelU8),
			BlurRadius: 0,
		},
		SIFT: sift.DefaultConfig(),
		Log:  LogConfig{Level: "info"},
	}
}

// LoadFromFile reads a JSON file on top of the defaults, so fields missing
// from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration as indented JSON
func (c *Config) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvPixelType); ok && v != "" {
		c.Sampling.PixelType = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWorkers, err)
		}
		c.Sampling.Workers = n
	}
	if v, ok := lookup(EnvBlurRadius); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBlurRadius, err)
		}
		c.Sampling.BlurRadius = f
	}
	return nil
}

// Load builds the effective configuration: defaults, then the file named by
// IMAGE_DENSE_CONFIG if set, then the remaining environment overrides.
func Load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.DenseConfig().Validate(); err != nil {
		return fmt.Errorf("sampling: %w", err)
	}
	if c.Sampling.Workers < 1 {
		return fmt.Errorf("sampling.workers must be at least 1")
	}
	if c.Sampling.BlurRadius < 0 {
		return fmt.Errorf("sampling.blur_radius must not be negative")
	}
	if _, err := imaging.ParsePixelType(c.Sampling.PixelType); err != nil {
		return fmt.Errorf("sampling.pixel_type: %w", err)
	}
	if err := c.SIFT.Validate(); err != nil {
		return fmt.Errorf("sift: %w", err)
	}
	switch c.Log.Level {
	case "info", "debug":
	default:
		return fmt.Errorf("log.level must be info or debug, got %q", c.Log.Level)
	}
	return nil
}

// DenseConfig returns the default sampling configuration.
func (c *Config) DenseConfig() dense.Config {
	return dense.Config{
		Scale:   c.Sampling.Scale,
		PeriodX: c.Sampling.PeriodX,
		PeriodY: c.Sampling.PeriodY,
	}
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.Log.Level == "debug"
}
