package config

// RawLogging mirrors Logging with optional fields.
type RawLogging struct {
	File       *string `yaml:"file"`
	MaxSizeMB  *int    `yaml:"max_size_mb"`
	MaxFiles   *int    `yaml:"max_files"`
	MaxAgeDays *int    `yaml:"max_age_days"`
	Compress   *bool   `yaml:"compress"`
}

// RawHotkeys mirrors Hotkeys with optional fields.
type RawHotkeys struct {
	Save    *string `yaml:"save"`
	Restore *string `yaml:"restore"`
}

// RawConfig is the file representation: unset keys stay nil and keep their
// defaults.
type RawConfig struct {
	Display        *string     `yaml:"display"`
	PollIntervalMS *int        `yaml:"poll_interval_ms"`
	SettleTicks    *int        `yaml:"settle_ticks"`
	HistoryDepth   *int        `yaml:"history_depth"`
	LogLevel       *string     `yaml:"log_level"`
	Logging        *RawLogging `yaml:"logging"`
	MetricsAddr    *string     `yaml:"metrics_addr"`
	WatchConfig    *bool       `yaml:"watch_config"`
	Hotkeys        *RawHotkeys `yaml:"hotkeys"`
}
