// Package config loads planmcs settings from a YAML file.
//
// The file path comes from the --config flag or the PLANMCS_CONFIG
// environment variable. Missing keys keep their defaults, and command-line
// flags override whatever the file sets.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrsinham/planmcs/internal/mcs"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "PLANMCS_CONFIG"

// Output formats for the score command.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config is the complete planmcs configuration.
type Config struct {
	Scoring ScoringConfig `yaml:"scoring"`
	Runner  RunnerConfig  `yaml:"runner"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
}

// ScoringConfig configures the MCS calculation.
type ScoringConfig struct {
	// MaxLeafOpening normalizes AAV, in mm.
	// Default: 400
	MaxLeafOpening float64 `yaml:"max_leaf_opening"`
}

// RunnerConfig configures batch scoring.
type RunnerConfig struct {
	// Workers is the number of files scored in parallel (0 = runtime.NumCPU()).
	Workers int `yaml:"workers"`
}

// OutputConfig configures the score report.
type OutputConfig struct {
	// Format is "table" or "json".
	Format string `yaml:"format"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Scoring: ScoringConfig{MaxLeafOpening: mcs.DefaultMaxLeafOpening},
		Runner:  RunnerConfig{Workers: 0},
		Output:  OutputConfig{Format: FormatTable},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads the file named by PLANMCS_CONFIG, or returns the defaults when
// the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates a configuration file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Scoring.MaxLeafOpening <= 0 {
		errs = append(errs, fmt.Errorf("scoring.max_leaf_opening must be > 0, got %v", c.Scoring.MaxLeafOpening))
	}
	if c.Runner.Workers < 0 {
		errs = append(errs, fmt.Errorf("runner.workers must be >= 0, got %d", c.Runner.Workers))
	}
	if c.Output.Format != FormatTable && c.Output.Format != FormatJSON {
		errs = append(errs, fmt.Errorf("output.format must be %q or %q, got %q", FormatTable, FormatJSON, c.Output.Format))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// MCS returns the calculator settings.
func (c *Config) MCS() mcs.Config {
	return mcs.Config{MaxLeafOpening: c.Scoring.MaxLeafOpening}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level: unknown level %q", s)
}
