// Package appconfig holds optional on-disk defaults for sitewatch —
// logs directory, UI cadence, and Prometheus exporter settings. Unlike
// the required --file site list, this file is pure UX convenience:
// absence falls back to defaults silently and a parse error falls back
// to defaults with a logged warning, never a startup failure.
package appconfig

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// Config holds user-configurable defaults.
type Config struct {
	LogsDir        string         `json:"logs_dir"`
	UIRefreshMillis int           `json:"ui_refresh_millis"`
	Prometheus     PrometheusConfig `json:"prometheus"`
}

// PrometheusConfig controls the optional metrics exporter.
type PrometheusConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		LogsDir:         "./logfiles",
		UIRefreshMillis: 1000,
		Prometheus: PrometheusConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9090",
		},
	}
}

// Path returns ~/.config/sitewatch/config.json (or $XDG_CONFIG_HOME),
// or "" if the home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "sitewatch", "config.json")
}

// Load loads config from disk; returns defaults if the file is absent
// or fails to parse (logging a warning in the latter case).
func Load() Config {
	cfg := Default()
	p := Path()
	if p == "" {
		return cfg
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("sitewatch: warning: config parse error: %v", err)
		return Default()
	}
	return cfg
}

// Save writes cfg to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if path == "" {
		return os.ErrNotExist
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
