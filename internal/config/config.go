// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	// Server configuration
	Server ServerConfig `toml:"server"`

	// Chat behaviour
	Chat ChatConfig `toml:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig contains the backend endpoint configuration.
type ServerConfig struct {
	// BaseURL is the root URL of the Smart Librarian backend
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the request timeout for non-streaming calls
	TimeoutSecs int `toml:"timeout_secs"`
}

// ChatConfig contains chat behaviour configuration.
type ChatConfig struct {
	// Streaming selects the SSE /chat/stream endpoint instead of POST /chat
	Streaming bool `toml:"streaming"`
	// Greeting is the synthetic first transcript entry shown on mount
	Greeting string `toml:"greeting"`
	// HistoryLimit caps how many exchanges /history lists
	HistoryLimit int `toml:"history_limit"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Markdown renders assistant answers through a terminal Markdown renderer
	Markdown bool `toml:"markdown"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// HTTPTrace logs one line per request/response (no bodies, no headers)
	HTTPTrace bool `toml:"http_trace"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultGreeting is the synthetic entry a fresh transcript is seeded with.
const DefaultGreeting = "Hi! I'm the Smart Librarian. Ask me for a book recommendation."

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:     "http://127.0.0.1:8000",
			TimeoutSecs: 60,
		},
		Chat: ChatConfig{
			Streaming:    false,
			Greeting:     DefaultGreeting,
			HistoryLimit: 20,
		},
		UI: UIConfig{
			Theme:    "dark",
			Markdown: true,
		},
		Logging: LoggingConfig{
			HTTPTrace: false,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the client configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".librarian"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load loads configuration from ~/.librarian/config.toml, falling back to
// defaults when the file is absent. A .env file in the working directory is
// loaded first (missing is fine), then LIBRARIAN_* environment overrides
// are applied, then the result is validated.
func Load() (*Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFile(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes a TOML config file into cfg.
func LoadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	return nil
}

// ApplyEnvOverrides applies LIBRARIAN_* environment variables over the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LIBRARIAN_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("LIBRARIAN_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.TimeoutSecs = n
		}
	}
	if v := os.Getenv("LIBRARIAN_STREAMING"); v != "" {
		c.Chat.Streaming = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("LIBRARIAN_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("LIBRARIAN_HTTP_TRACE"); v != "" {
		c.Logging.HTTPTrace = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server.base_url has no host")
	}

	if c.Server.TimeoutSecs <= 0 {
		return fmt.Errorf("server.timeout_secs must be positive, got %d", c.Server.TimeoutSecs)
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme must be dark, light or auto, got %q", c.UI.Theme)
	}

	if c.Chat.Greeting == "" {
		c.Chat.Greeting = DefaultGreeting
	}
	if c.Chat.HistoryLimit <= 0 {
		c.Chat.HistoryLimit = 20
	}

	return nil
}
