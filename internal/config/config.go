// Package config loads environment defaults for the CLI. Flags override
// every value loaded here.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix, e.g. OBFUSHTML_ENGINE.
const Prefix = "OBFUSHTML"

// Config holds all environment-driven settings.
type Config struct {
	// Engine selection and tuning.
	Engine  string        `envconfig:"ENGINE" default:"auto"`
	Bundle  string        `envconfig:"BUNDLE"`
	Node    string        `envconfig:"NODE" default:"node"`
	NodeDir string        `envconfig:"NODE_DIR"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"60s"`
	Jobs    int           `envconfig:"JOBS" default:"1"`

	// Logging.
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
	LogDev   bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine:   "auto",
		Node:     "node",
		Timeout:  60 * time.Second,
		Jobs:     1,
		LogLevel: "warn",
	}
}
