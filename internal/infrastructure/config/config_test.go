package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Terminal config
	assert.Equal(t, 80, cfg.Terminal.Cols)
	assert.Equal(t, 24, cfg.Terminal.Rows)
	assert.False(t, cfg.Terminal.StrictLookup)
	assert.Equal(t, 3*time.Second, cfg.Terminal.KillTimeout)

	// Only local pages may drive the terminals
	assert.NotContains(t, cfg.WebSocket.AllowedOrigins, "*")
	assert.Contains(t, cfg.WebSocket.AllowedOrigins, "http://localhost:*")

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	require.NoError(t, cfg.Validate())
}

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "HOST",
		"TERMINAL_COLS", "TERMINAL_ROWS", "TERMINAL_STRICT_LOOKUP", "TERMINAL_KILL_TIMEOUT",
		"TERMINAL_DRAIN_TIMEOUT", "TERMINAL_READ_BUFFER",
		"WS_SEND_BUFFER", "WS_PING_INTERVAL", "WS_MAX_MESSAGE_BYTES", "WS_ALLOWED_ORIGINS",
		"LOG_LEVEL", "LOG_DEV",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_ENABLED",
	}
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, value) })
		}
	}
}

func TestLoadMatchesDefault(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                   "9000",
		"HOST":                   "0.0.0.0",
		"TERMINAL_COLS":          "120",
		"TERMINAL_ROWS":          "40",
		"TERMINAL_STRICT_LOOKUP": "true",
		"TERMINAL_KILL_TIMEOUT":  "0s",
		"WS_SEND_BUFFER":         "16",
		"WS_ALLOWED_ORIGINS":     "http://localhost:5173,https://term.example",
		"LOG_LEVEL":              "debug",
		"LOG_DEV":                "true",
		"RATE_LIMIT_ENABLED":     "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 120, cfg.Terminal.Cols)
	assert.Equal(t, 40, cfg.Terminal.Rows)
	assert.True(t, cfg.Terminal.StrictLookup)
	assert.Equal(t, time.Duration(0), cfg.Terminal.KillTimeout)
	assert.Equal(t, 16, cfg.WebSocket.SendBuffer)
	assert.Equal(t, []string{"http://localhost:5173", "https://term.example"}, cfg.WebSocket.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadRejectsBadGeometry(t *testing.T) {
	clearEnv(t)
	t.Setenv("TERMINAL_COLS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedValue(t *testing.T) {
	t.Setenv("TERMINAL_KILL_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
