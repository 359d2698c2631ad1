package ratelimit

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig overrides the default limit for one route. Path is an exact
// path, a pattern with "*" segments, or a prefix ending in "/". Burst falls
// back to Limit when zero.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// LoadConfig reads the RATE_LIMIT_* environment variables. Unparseable
// values fall back to their defaults.
func LoadConfig() *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr("RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   envOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: envOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		IdleTimeout:     envOr("RATE_LIMIT_IDLE_TIMEOUT", time.Hour, time.ParseDuration),
		Whitelist:       ipSet(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       ipSet(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route limits. Imports, optimization
// and PDF extraction are limited per hour. Auth and writes are limited per
// minute. Reads use the default limit and /health is never limited.
func DefaultEndpointConfigs() []EndpointConfig {
	hourly := func(method, path string, limit, burst int) EndpointConfig {
		return EndpointConfig{Path: path, Method: method, Limit: limit, Window: time.Hour, Burst: burst}
	}
	perMinute := func(method, path string, limit, burst int) EndpointConfig {
		return EndpointConfig{Path: path, Method: method, Limit: limit, Window: time.Minute, Burst: burst}
	}

	configs := []EndpointConfig{
		hourly(http.MethodPost, "/imports", 10, 2),
		hourly(http.MethodPost, "/jobs/*/optimize", 60, 10),
		hourly(http.MethodPost, "/resumes/extract", 30, 5),
		perMinute(http.MethodPost, "/auth/login", 10, 5),
		perMinute(http.MethodPost, "/auth/register", 5, 2),
		perMinute(http.MethodPost, "/jobs", 100, 10),
		perMinute(http.MethodPost, "/resumes/base", 100, 10),
	}
	for _, prefix := range []string{"/jobs/", "/resumes/base/"} {
		configs = append(configs,
			perMinute(http.MethodPut, prefix, 100, 10),
			perMinute(http.MethodDelete, prefix, 100, 10),
		)
	}
	return configs
}

func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// ipSet splits a comma-separated address list.
func ipSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
