// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for minichat.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location (in order of precedence):
//   - path given on the command line
//   - ~/.minichat/config.toml
//   - built-in defaults
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete minichat configuration.
type Config struct {
	// Server is the backend the client talks to.
	Server ServerConfig `toml:"server"`

	// UI holds presentation settings. This section is hot-reloadable.
	UI UIConfig `toml:"ui"`

	// Serve configures the bundled dev server (`minichat serve`).
	Serve ServeConfig `toml:"serve"`
}

// ServerConfig points the client at a backend.
type ServerConfig struct {
	// URL is the backend base URL.
	URL string `toml:"url"`
	// RequestTimeout bounds non-chat requests. Zero disables the timeout;
	// chat turns always run to completion either way.
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark", "light" or "auto" (detect from the terminal).
	Theme string `toml:"theme"`
	// CodeStyle is the chroma style used for fenced code blocks.
	CodeStyle string `toml:"code_style"`
	// SidebarWidth is the conversation list width in columns.
	SidebarWidth int `toml:"sidebar_width"`
}

// ServeConfig configures the bundled dev server.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`
	// DBPath is the SQLite database file. ":memory:" keeps nothing on disk.
	DBPath string `toml:"db_path"`
	// UploadsDir is where image attachments are stored and served from.
	UploadsDir string `toml:"uploads_dir"`
	// RatePerSecond limits requests per client IP. Zero disables limiting.
	RatePerSecond float64 `toml:"rate_per_second"`
	// MaxImageBytes caps accepted image uploads.
	MaxImageBytes int64 `toml:"max_image_bytes"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            "http://127.0.0.1:8000",
			RequestTimeout: 0,
		},
		UI: UIConfig{
			Theme:        "auto",
			CodeStyle:    "monokai",
			SidebarWidth: 28,
		},
		Serve: ServeConfig{
			Addr:          "127.0.0.1:8000",
			DBPath:        defaultDBPath(),
			UploadsDir:    "uploads",
			RatePerSecond: 20,
			MaxImageBytes: 20 * 1024 * 1024,
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".minichat", "config.toml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "minichat.db"
	}
	return filepath.Join(home, ".minichat", "minichat.db")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from path, falling back to defaults for missing
// values and applying environment overrides last. A missing file is not an
// error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies MINICHAT_* environment overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("MINICHAT_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("MINICHAT_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("MINICHAT_SERVE_ADDR"); v != "" {
		cfg.Serve.Addr = v
	}
	if v := os.Getenv("MINICHAT_DB_PATH"); v != "" {
		cfg.Serve.DBPath = v
	}
	if v := os.Getenv("MINICHAT_UPLOADS_DIR"); v != "" {
		cfg.Serve.UploadsDir = v
	}
	if v := os.Getenv("MINICHAT_RATE_PER_SECOND"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Serve.RatePerSecond = rate
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.Server.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("server.url must be an absolute http(s) URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("server.url must use http or https")
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme %q is not one of dark, light, auto", c.UI.Theme)
	}

	if c.UI.SidebarWidth < 16 {
		return errors.New("ui.sidebar_width must be at least 16")
	}
	if c.Serve.RatePerSecond < 0 {
		return errors.New("serve.rate_per_second cannot be negative")
	}
	if c.Serve.MaxImageBytes <= 0 {
		return errors.New("serve.max_image_bytes must be positive")
	}
	return nil
}
