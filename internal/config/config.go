// ABOUTME: Runtime configuration for the socrata-mcp server and CLI
// ABOUTME: Merges defaults, the TOML config file, .env files, and environment
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// AppName names the config directory and the MCP implementation.
	AppName = "socrata-mcp"

	// Version is reported to MCP clients and in the default User-Agent.
	Version = "0.1.0"
)

// Environment variables recognised by Load.
const (
	EnvAppToken   = "SOCRATA_APP_TOKEN"
	EnvConfigPath = "SOCRATA_MCP_CONFIG"
	EnvLogLevel   = "SOCRATA_MCP_LOG_LEVEL"
)

// Config holds every tunable of the client and the dispatcher.
type Config struct {
	AppToken         string        `toml:"app_token"`
	UserAgent        string        `toml:"user_agent"`
	Timeout          time.Duration `toml:"timeout"`
	SearchTimeout    time.Duration `toml:"search_timeout"`
	MaxResponseBytes int           `toml:"max_response_bytes"`
	TruncateItems    int           `toml:"truncate_items"`
	RateLimit        float64       `toml:"rate_limit"`
	LogLevel         string        `toml:"log_level"`
	LogFormat        string        `toml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UserAgent:        AppName + "/" + Version,
		Timeout:          60 * time.Second,
		SearchTimeout:    30 * time.Second,
		MaxResponseBytes: 50000,
		TruncateItems:    5,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load builds the effective configuration. An empty path falls back to
// SOCRATA_MCP_CONFIG and then to DefaultPath. A missing file is only an error
// when the path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvConfigPath); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath()
		}
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if token := strings.TrimSpace(os.Getenv(EnvAppToken)); token != "" {
		c.AppToken = token
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.LogLevel = level
	}
}

// Validate rejects values the client or dispatcher cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Timeout <= 0:
		return fmt.Errorf("invalid config: timeout must be positive, got %s", c.Timeout)
	case c.SearchTimeout <= 0:
		return fmt.Errorf("invalid config: search_timeout must be positive, got %s", c.SearchTimeout)
	case c.MaxResponseBytes <= 0:
		return fmt.Errorf("invalid config: max_response_bytes must be positive, got %d", c.MaxResponseBytes)
	case c.TruncateItems <= 0:
		return fmt.Errorf("invalid config: truncate_items must be positive, got %d", c.TruncateItems)
	case c.RateLimit < 0:
		return fmt.Errorf("invalid config: rate_limit must not be negative, got %g", c.RateLimit)
	}
	return nil
}

// Masked returns a copy safe to print: the app token is reduced to its last
// four characters.
func (c *Config) Masked() Config {
	out := *c
	if n := len(out.AppToken); n > 0 {
		if n <= 4 {
			out.AppToken = strings.Repeat("*", n)
		} else {
			out.AppToken = strings.Repeat("*", n-4) + out.AppToken[n-4:]
		}
	}
	return out
}

// WriteTOML encodes the masked configuration to w.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c.Masked())
}
