package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig overlays raw on the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.PollIntervalMS != nil {
		cfg.PollIntervalMS = *raw.PollIntervalMS
	}
	if raw.SettleTicks != nil {
		cfg.SettleTicks = *raw.SettleTicks
	}
	if raw.HistoryDepth != nil {
		cfg.HistoryDepth = *raw.HistoryDepth
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.MetricsAddr != nil {
		cfg.MetricsAddr = *raw.MetricsAddr
	}
	if raw.WatchConfig != nil {
		cfg.WatchConfig = *raw.WatchConfig
	}

	if l := raw.Logging; l != nil {
		if l.File != nil {
			path, err := expandHome(*l.File)
			if err != nil {
				return nil, &ValidationError{Path: "logging.file", Err: err}
			}
			cfg.Logging.File = path
		}
		if l.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *l.MaxSizeMB
		}
		if l.MaxFiles != nil {
			cfg.Logging.MaxFiles = *l.MaxFiles
		}
		if l.MaxAgeDays != nil {
			cfg.Logging.MaxAgeDays = *l.MaxAgeDays
		}
		if l.Compress != nil {
			cfg.Logging.Compress = *l.Compress
		}
	}

	if h := raw.Hotkeys; h != nil {
		if h.Save != nil {
			cfg.Hotkeys.Save = strings.TrimSpace(*h.Save)
		}
		if h.Restore != nil {
			cfg.Hotkeys.Restore = strings.TrimSpace(*h.Restore)
		}
	}

	return cfg, nil
}
