package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"LISTEN_ADDR", "CALC_BACKEND_URL", "FAN_DB_PATH", "TOOLS_DIR", "OTEL_ENABLED", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "data/fan_database.db", cfg.FanDBPath)
	assert.Empty(t, cfg.BackendURL)
	assert.Empty(t, cfg.ToolsDir)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.CalculationURL())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", "0.0.0.0:9000")
	t.Setenv("CALC_BACKEND_URL", "https://calc.internal/")
	t.Setenv("FAN_DB_PATH", ":memory:")
	t.Setenv("TOOLS_DIR", "/etc/engcalc/tools")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Config{
		ListenAddr:  "0.0.0.0:9000",
		BackendURL:  "https://calc.internal",
		FanDBPath:   ":memory:",
		ToolsDir:    "/etc/engcalc/tools",
		OTelEnabled: false,
		LogLevel:    "debug",
	}, cfg)
	assert.Equal(t, "https://calc.internal", cfg.CalculationURL())
	assert.Equal(t, "http://0.0.0.0:9000", cfg.SelfURL())
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("OTEL_ENABLED", "maybe")
	_, err := Load()
	assert.ErrorContains(t, err, "OTEL_ENABLED")

	clearEnv(t)
	t.Setenv("CALC_BACKEND_URL", "calc.internal:8080")
	_, err = Load()
	assert.ErrorContains(t, err, "CALC_BACKEND_URL")
}
