// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultListenAddr = ":8080"
	defaultFanDBPath  = "data/fan_database.db"
)

// Config holds the runtime settings of cmd/api.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string
	// BackendURL is where tool pages send calculations. Empty means this
	// process serves them itself.
	BackendURL string
	// FanDBPath is the SQLite file holding fan performance presets.
	FanDBPath string
	// ToolsDir replaces the built-in tool definitions when set.
	ToolsDir string
	// OTelEnabled turns on the OTLP exporters for traces, metrics and logs.
	OTelEnabled bool
	// LogLevel is the minimum zap level written.
	LogLevel string
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:  getenv("LISTEN_ADDR", defaultListenAddr),
		BackendURL:  strings.TrimRight(os.Getenv("CALC_BACKEND_URL"), "/"),
		FanDBPath:   getenv("FAN_DB_PATH", defaultFanDBPath),
		ToolsDir:    os.Getenv("TOOLS_DIR"),
		OTelEnabled: true,
		LogLevel:    getenv("LOG_LEVEL", "info"),
	}

	if raw := os.Getenv("OTEL_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("OTEL_ENABLED: %w", err)
		}
		cfg.OTelEnabled = enabled
	}

	if cfg.BackendURL != "" && !strings.HasPrefix(cfg.BackendURL, "http://") && !strings.HasPrefix(cfg.BackendURL, "https://") {
		return Config{}, fmt.Errorf("CALC_BACKEND_URL must be an http(s) URL, got %q", cfg.BackendURL)
	}

	return cfg, nil
}

// SelfURL is the backend URL for a process calling its own API.
func (c Config) SelfURL() string {
	addr := c.ListenAddr
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

// CalculationURL returns BackendURL, or SelfURL when none is configured.
func (c Config) CalculationURL() string {
	if c.BackendURL != "" {
		return c.BackendURL
	}
	return c.SelfURL()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
