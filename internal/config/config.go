// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers an optional YAML file and HOMEVAL_* env vars on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/homeval/internal/domain/features"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile optionally mirrors logs into a rotated file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// BaseDir overrides the directory artifacts are resolved against.
	// Empty means the directory of the running executable.
	BaseDir string `koanf:"base_dir"`

	// ModelsDir is the artifact directory, relative to BaseDir unless absolute.
	ModelsDir string `koanf:"models_dir"`

	// ModelFile, SchemaFile and MetricFile name the artifacts inside ModelsDir.
	ModelFile  string `koanf:"model_file"`
	SchemaFile string `koanf:"schema_file"`
	MetricFile string `koanf:"metric_file"`

	// InputMode selects free_text or bounded_widget form inputs.
	InputMode string `koanf:"input_mode"`

	// StrictSchema rejects feature schemas that do not name exactly the form fields.
	StrictSchema bool `koanf:"strict_schema"`

	// CurrencySymbol prefixes formatted prices.
	CurrencySymbol string `koanf:"currency_symbol"`

	// PriceMultiplier scales the raw model output before display.
	PriceMultiplier float64 `koanf:"price_multiplier"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8501",
		ModelsDir:       "notebooks/models",
		ModelFile:       "best_model.json",
		SchemaFile:      "feature_names.json",
		MetricFile:      "test_r2.txt",
		InputMode:       string(features.ModeFreeText),
		StrictSchema:    true,
		CurrencySymbol:  "$",
		PriceMultiplier: 100_000,
	}
}

// Mode returns the parsed input mode.
func (c *Config) Mode() (features.Mode, error) {
	return features.ParseMode(c.InputMode)
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ModelsDir) == "":
		return fmt.Errorf("%w: models_dir must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ModelFile) == "":
		return fmt.Errorf("%w: model_file must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.SchemaFile) == "":
		return fmt.Errorf("%w: schema_file must not be empty", ErrInvalidConfig)
	case c.PriceMultiplier <= 0:
		return fmt.Errorf("%w: price_multiplier must be positive", ErrInvalidConfig)
	}
	if _, err := c.Mode(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
