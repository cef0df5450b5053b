package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML path and where it
// came from.
//
// Supported paths:
//
//	display
//	poll_interval_ms
//	settle_ticks
//	history_depth
//	log_level
//	metrics_addr
//	watch_config
//	logging.file
//	logging.max_size_mb
//	logging.max_files
//	logging.max_age_days
//	logging.compress
//	hotkeys.save
//	hotkeys.restore
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "display":
		return cfg.Display, nil
	case "poll_interval_ms":
		return cfg.PollIntervalMS, nil
	case "settle_ticks":
		return cfg.SettleTicks, nil
	case "history_depth":
		return cfg.HistoryDepth, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "metrics_addr":
		return cfg.MetricsAddr, nil
	case "watch_config":
		return cfg.WatchConfig, nil
	case "logging":
		return cfg.Logging, nil
	case "logging.file":
		return cfg.Logging.File, nil
	case "logging.max_size_mb":
		return cfg.Logging.MaxSizeMB, nil
	case "logging.max_files":
		return cfg.Logging.MaxFiles, nil
	case "logging.max_age_days":
		return cfg.Logging.MaxAgeDays, nil
	case "logging.compress":
		return cfg.Logging.Compress, nil
	case "hotkeys":
		return cfg.Hotkeys, nil
	case "hotkeys.save":
		return cfg.Hotkeys.Save, nil
	case "hotkeys.restore":
		return cfg.Hotkeys.Restore, nil
	default:
		return nil, fmt.Errorf("unknown config path %q", path)
	}
}
