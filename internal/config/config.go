// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (SQLite file behind a sqlite:/// URL)
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite:///data/app.db"`

	// Shared secret for webhook HMAC signatures. Optional at startup:
	// an unset secret fails the readiness probe but the process still runs.
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// DBPath extracts the file path from the sqlite URL.
// A DATABASE_URL of "sqlite:///data/app.db" maps to "/data/app.db".
func (c *Config) DBPath() string {
	if strings.HasPrefix(c.DatabaseURL, "sqlite://") {
		return strings.TrimPrefix(c.DatabaseURL, "sqlite://")
	}
	return c.DatabaseURL
}

// HasWebhookSecret reports whether the shared secret is configured.
func (c *Config) HasWebhookSecret() bool {
	return c.WebhookSecret != ""
}

// Load parses environment variables and returns a Config.
// Returns an error if a variable fails to parse.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
