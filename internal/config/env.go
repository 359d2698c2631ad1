package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string // debug, info, warn or error
	Format string // text or json
}

// NewLogConfig reads LOG_LEVEL (default: info) and LOG_FORMAT (default: text).
func NewLogConfig() (*LogConfig, error) {
	config := &LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "text"),
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize lowercases and validates the configuration.
func (c *LogConfig) normalize() error {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %q (must be debug, info, warn or error)", c.Level)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %q (must be text or json)", c.Format)
	}
	return nil
}

// Override applies non-empty level and format, e.g. from CLI flags.
func (c *LogConfig) Override(level, format string) error {
	if level != "" {
		c.Level = level
	}
	if format != "" {
		c.Format = format
	}
	return c.normalize()
}

// ScrapeConfig controls how job postings are fetched.
type ScrapeConfig struct {
	BatchSize  int           // URLs fetched concurrently
	BatchDelay time.Duration // pause between batches
	Rate       float64       // outbound requests per second, 0 for unlimited
	UseBrowser bool          // render thin pages in headless Chrome
}

// NewScrapeConfig reads SCRAPE_BATCH_SIZE (default: 5), SCRAPE_BATCH_DELAY
// (default: 2s), SCRAPE_RATE (default: 0) and SCRAPE_USE_BROWSER (default:
// false).
func NewScrapeConfig() (*ScrapeConfig, error) {
	size, err := strconv.Atoi(getEnv("SCRAPE_BATCH_SIZE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_BATCH_SIZE: %v", err)
	}
	delay, err := time.ParseDuration(getEnv("SCRAPE_BATCH_DELAY", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_BATCH_DELAY: %v", err)
	}
	rate, err := strconv.ParseFloat(getEnv("SCRAPE_RATE", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_RATE: %v", err)
	}
	useBrowser, err := strconv.ParseBool(getEnv("SCRAPE_USE_BROWSER", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_USE_BROWSER: %v", err)
	}

	config := &ScrapeConfig{
		BatchSize:  size,
		BatchDelay: delay,
		Rate:       rate,
		UseBrowser: useBrowser,
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *ScrapeConfig) normalize() error {
	if c.BatchSize < 1 || c.BatchSize > 50 {
		return fmt.Errorf("SCRAPE_BATCH_SIZE out of range: %d (must be 1-50)", c.BatchSize)
	}
	if c.BatchDelay < 0 {
		return fmt.Errorf("SCRAPE_BATCH_DELAY must not be negative, got: %s", c.BatchDelay)
	}
	if c.Rate < 0 {
		return fmt.Errorf("SCRAPE_RATE must not be negative, got: %g", c.Rate)
	}
	return nil
}

// Apply overlays non-zero values from a CLI config file.
func (c *ScrapeConfig) Apply(file Config) error {
	if file.BatchSize > 0 {
		c.BatchSize = file.BatchSize
	}
	c.BatchDelay = file.BatchDelayDuration(c.BatchDelay)
	if file.UseBrowser {
		c.UseBrowser = true
	}
	return c.normalize()
}

// ServerConfig holds the API listener settings.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// NewServerConfig reads PORT (default: 8080), SHUTDOWN_TIMEOUT (default:
// 30s) and CORS_ALLOWED_ORIGINS (comma-separated, default: *).
func NewServerConfig() (*ServerConfig, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %v", err)
	}
	timeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %v", err)
	}

	var origins []string
	for _, o := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", port)
	}
	return &ServerConfig{Port: port, ShutdownTimeout: timeout, AllowedOrigins: origins}, nil
}

// getEnv returns the environment variable key, or def when it is unset.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
