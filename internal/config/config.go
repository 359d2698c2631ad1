// Package config provides configuration loading and validation for the CLI
// and the API server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/career-portal/internal/schemas"
	embedded "github.com/jonathan/career-portal/schemas"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	StorePath   string `json:"store_path,omitempty"`   // Local SQLite store
	UserID      string `json:"user_id,omitempty"`      // Scopes local store keys

	// Optimization
	BaseResume  string `json:"base_resume,omitempty"` // Path to the resume to tailor
	MinKeywords int    `json:"min_keywords,omitempty"`
	MaxKeywords int    `json:"max_keywords,omitempty"`

	// Scraping
	UseBrowser bool   `json:"use_browser,omitempty"` // Render thin pages in headless Chrome
	BatchSize  int    `json:"batch_size,omitempty"`
	BatchDelay string `json:"batch_delay,omitempty"` // e.g. "2s"

	// Logging
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`
}

// LoadConfig loads configuration from a JSON file after checking it against
// the config schema. Returns an error if the file cannot be read, parsed or
// validated.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := schemas.ValidateBytes(embedded.Config, data); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.MinKeywords < 0 || c.MaxKeywords < 0 {
		return fmt.Errorf("config error: keyword limits must be non-negative")
	}
	if c.MinKeywords > 0 && c.MaxKeywords > 0 && c.MinKeywords > c.MaxKeywords {
		return fmt.Errorf("config error: 'min_keywords' (%d) exceeds 'max_keywords' (%d)", c.MinKeywords, c.MaxKeywords)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("config error: 'batch_size' must be non-negative")
	}
	if c.BatchDelay != "" {
		if _, err := time.ParseDuration(c.BatchDelay); err != nil {
			return fmt.Errorf("config error: invalid 'batch_delay' %q: %w", c.BatchDelay, err)
		}
	}

	// Validate file paths exist (if specified)
	if c.BaseResume != "" {
		if _, err := os.Stat(c.BaseResume); os.IsNotExist(err) {
			return fmt.Errorf("config error: base resume file not found: %s", c.BaseResume)
		}
	}

	return nil
}

// BatchDelayDuration parses BatchDelay, returning fallback when it is unset
// or invalid.
func (c *Config) BatchDelayDuration(fallback time.Duration) time.Duration {
	if c.BatchDelay == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.BatchDelay)
	if err != nil {
		return fallback
	}
	return d
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.StorePath == "" {
		result.StorePath = defaults.StorePath
	}
	if result.UserID == "" {
		result.UserID = defaults.UserID
	}
	if result.BaseResume == "" {
		result.BaseResume = defaults.BaseResume
	}
	if result.BatchDelay == "" {
		result.BatchDelay = defaults.BatchDelay
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Int fields: use default if zero
	if result.MinKeywords == 0 {
		result.MinKeywords = defaults.MinKeywords
	}
	if result.MaxKeywords == 0 {
		result.MaxKeywords = defaults.MaxKeywords
	}
	if result.BatchSize == 0 {
		result.BatchSize = defaults.BatchSize
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
