package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Terminal  TerminalConfig
	WebSocket WebSocketConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// TerminalConfig holds session manager configuration.
type TerminalConfig struct {
	Cols int `envconfig:"TERMINAL_COLS" default:"80"`
	Rows int `envconfig:"TERMINAL_ROWS" default:"24"`
	// StrictLookup turns write/destroy/resize on unknown ids into errors.
	StrictLookup bool          `envconfig:"TERMINAL_STRICT_LOOKUP" default:"false"`
	KillTimeout  time.Duration `envconfig:"TERMINAL_KILL_TIMEOUT" default:"3s"`
	DrainTimeout time.Duration `envconfig:"TERMINAL_DRAIN_TIMEOUT" default:"250ms"`
	ReadBuffer   int           `envconfig:"TERMINAL_READ_BUFFER" default:"4096"`
}

// WebSocketConfig holds display surface connection settings.
type WebSocketConfig struct {
	SendBuffer      int           `envconfig:"WS_SEND_BUFFER" default:"256"`
	PingInterval    time.Duration `envconfig:"WS_PING_INTERVAL" default:"30s"`
	MaxMessageBytes int64         `envconfig:"WS_MAX_MESSAGE_BYTES" default:"1048576"`
	// AllowedOrigins lists the browser origins that may open the terminal
	// channel and call the REST API, as scheme://host[:port|:*].
	AllowedOrigins []string `envconfig:"WS_ALLOWED_ORIGINS" default:"http://localhost:*,http://127.0.0.1:*,http://[::1]:*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Terminal.Cols <= 0 || c.Terminal.Rows <= 0 {
		return fmt.Errorf("invalid terminal geometry %dx%d", c.Terminal.Cols, c.Terminal.Rows)
	}
	if c.Terminal.Cols > 65535 || c.Terminal.Rows > 65535 {
		return fmt.Errorf("terminal geometry %dx%d out of range", c.Terminal.Cols, c.Terminal.Rows)
	}
	if c.Terminal.ReadBuffer < 64 {
		return fmt.Errorf("terminal read buffer too small: %d", c.Terminal.ReadBuffer)
	}
	if c.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("websocket send buffer must be positive: %d", c.WebSocket.SendBuffer)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "127.0.0.1",
		},
		Terminal: TerminalConfig{
			Cols:         80,
			Rows:         24,
			StrictLookup: false,
			KillTimeout:  3 * time.Second,
			DrainTimeout: 250 * time.Millisecond,
			ReadBuffer:   4096,
		},
		WebSocket: WebSocketConfig{
			SendBuffer:      256,
			PingInterval:    30 * time.Second,
			MaxMessageBytes: 1 << 20,
			AllowedOrigins: []string{
				"http://localhost:*",
				"http://127.0.0.1:*",
				"http://[::1]:*",
			},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
