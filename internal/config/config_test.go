// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
	if cfg.Server.BaseURL == "" {
		t.Error("default base URL is empty")
	}
	if cfg.Chat.Greeting == "" {
		t.Error("default greeting is empty")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
base_url = "https://books.example.com"
timeout_secs = 30

[chat]
streaming = true

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Server.BaseURL != "https://books.example.com" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d", cfg.Server.TimeoutSecs)
	}
	if !cfg.Chat.Streaming {
		t.Error("Streaming = false, want true")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	// Unset sections keep their defaults.
	if cfg.Chat.Greeting != DefaultGreeting {
		t.Errorf("Greeting = %q, want default", cfg.Chat.Greeting)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIBRARIAN_SERVER_URL", "http://10.0.0.5:9000")
	t.Setenv("LIBRARIAN_TIMEOUT_SECS", "15")
	t.Setenv("LIBRARIAN_STREAMING", "true")
	t.Setenv("LIBRARIAN_HTTP_TRACE", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSecs != 15 {
		t.Errorf("TimeoutSecs = %d", cfg.Server.TimeoutSecs)
	}
	if !cfg.Chat.Streaming {
		t.Error("Streaming not overridden")
	}
	if !cfg.Logging.HTTPTrace {
		t.Error("HTTPTrace not overridden")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://x" }},
		{"no host", func(c *Config) { c.Server.BaseURL = "http://" }},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSecs = 0 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted an invalid config")
			}
		})
	}
}
