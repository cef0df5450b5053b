package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Logging configures the optional rotating log file.
type Logging struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxFiles   int    `yaml:"max_files"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Hotkeys binds optional global key sequences, e.g. "Mod4-Shift-s".
type Hotkeys struct {
	Save    string `yaml:"save"`
	Restore string `yaml:"restore"`
}

// Config is the effective daemon configuration.
type Config struct {
	// Display is the X display to connect to. Empty uses $DISPLAY.
	Display string `yaml:"display"`
	// PollIntervalMS is the sampling period in milliseconds.
	PollIntervalMS int `yaml:"poll_interval_ms"`
	// SettleTicks is how many samples a new topology must survive before
	// its layout is restored.
	SettleTicks int `yaml:"settle_ticks"`
	// HistoryDepth is the number of layouts kept per topology.
	HistoryDepth int     `yaml:"history_depth"`
	LogLevel     string  `yaml:"log_level"`
	Logging      Logging `yaml:"logging"`
	// MetricsAddr enables the Prometheus endpoint when set, e.g. "127.0.0.1:9466".
	MetricsAddr string `yaml:"metrics_addr"`
	// WatchConfig reloads the file when it changes on disk.
	WatchConfig bool    `yaml:"watch_config"`
	Hotkeys     Hotkeys `yaml:"hotkeys"`
}

const (
	minPollIntervalMS = 100
	maxSettleTicks    = 60
	maxHistoryDepth   = 32
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		PollIntervalMS: 1000,
		SettleTicks:    3,
		HistoryDepth:   3,
		LogLevel:       "info",
		WatchConfig:    true,
	}
}

// PollInterval returns PollIntervalMS as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.PollIntervalMS < minPollIntervalMS {
		return &ValidationError{Path: "poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be >= %d", minPollIntervalMS)}
	}
	if c.SettleTicks < 0 || c.SettleTicks > maxSettleTicks {
		return &ValidationError{Path: "settle_ticks", Err: fmt.Errorf("settle_ticks must be between 0 and %d", maxSettleTicks)}
	}
	if c.HistoryDepth < 1 || c.HistoryDepth > maxHistoryDepth {
		return &ValidationError{Path: "history_depth", Err: fmt.Errorf("history_depth must be between 1 and %d", maxHistoryDepth)}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	if c.Logging.MaxAgeDays < 0 {
		return &ValidationError{Path: "logging.max_age_days", Err: fmt.Errorf("max_age_days must be >= 0")}
	}
	if c.Hotkeys.Save != "" && c.Hotkeys.Save == c.Hotkeys.Restore {
		return &ValidationError{Path: "hotkeys.restore", Err: fmt.Errorf("save and restore cannot share %q", c.Hotkeys.Save)}
	}
	if addr := strings.TrimSpace(c.MetricsAddr); addr != "" && !strings.Contains(addr, ":") {
		return &ValidationError{Path: "metrics_addr", Err: fmt.Errorf("metrics_addr must be host:port")}
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
