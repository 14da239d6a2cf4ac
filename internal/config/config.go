// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings. None of them alter API payloads.
type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// Testing switches the server into in-process test mode: handler panics
	// propagate to the caller instead of becoming 500 responses.
	Testing bool `env:"TESTING" envDefault:"false"`

	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	ProjectID      string   `env:"GOOGLE_CLOUD_PROJECT"`
	DocsPath       string   `env:"DOCS_PATH" envDefault:"/api-docs"`
	MetricsEnabled bool     `env:"METRICS_ENABLED" envDefault:"true"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file, then parses and validates the
// environment. Variables already set in the environment take precedence over
// the file.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Port:            8080,
		LogLevel:        "info",
		DocsPath:        "/api-docs",
		MetricsEnabled:  true,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ForTesting returns the default configuration with the testing flag set.
func ForTesting() *Config {
	cfg := Default()
	cfg.Testing = true
	cfg.MetricsEnabled = false
	return cfg
}

// Validate checks value ranges that the parser cannot express.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if c.DocsPath != "" && !strings.HasPrefix(c.DocsPath, "/") {
		return fmt.Errorf("docs path must start with '/': %q", c.DocsPath)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
