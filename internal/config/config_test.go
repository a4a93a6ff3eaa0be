// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.URL != "http://127.0.0.1:8000" {
		t.Errorf("Server.URL = %q, want default", cfg.Server.URL)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("UI.Theme = %q, want auto", cfg.UI.Theme)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
url = "https://chat.example.com"

[ui]
theme = "light"
code_style = "dracula"
sidebar_width = 32
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.URL != "https://chat.example.com" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.UI.Theme != "light" || cfg.UI.CodeStyle != "dracula" || cfg.UI.SidebarWidth != 32 {
		t.Errorf("UI section not applied: %+v", cfg.UI)
	}
	// Untouched sections keep defaults.
	if cfg.Serve.RatePerSecond != 20 {
		t.Errorf("Serve.RatePerSecond = %v, want default 20", cfg.Serve.RatePerSecond)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\nurl = \"http://file.example\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MINICHAT_SERVER_URL", "http://env.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.URL != "http://env.example" {
		t.Errorf("Server.URL = %q, want env override", cfg.Server.URL)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed TOML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"relative url", func(c *Config) { c.Server.URL = "/api" }, true},
		{"ftp url", func(c *Config) { c.Server.URL = "ftp://host" }, true},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"narrow sidebar", func(c *Config) { c.UI.SidebarWidth = 4 }, true},
		{"negative rate", func(c *Config) { c.Serve.RatePerSecond = -1 }, true},
		{"zero image cap", func(c *Config) { c.Serve.MaxImageBytes = 0 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
