package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/winpin/internal/config"
	"github.com/1broseidon/winpin/internal/daemon"
	"github.com/1broseidon/winpin/internal/logging"
	"github.com/1broseidon/winpin/internal/platform/platformtest"
)

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 1}, "file:/c.yaml:3:1"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
		{config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestReloader_AppliesSettingsAndLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("settle_ticks: 3\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	logger, err := logging.New(logging.Options{Level: "info", Stderr: io.Discard})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	rec := daemon.NewReconciler(daemon.ReconcilerConfig{Interval: time.Hour}, platformtest.NewBackend())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(runCtx)
		close(done)
	}()
	defer func() {
		stop()
		<-done
	}()

	rl := &reloader{path: path, cfg: res.Config, rec: rec, logger: logger}

	body := "settle_ticks: 6\nhistory_depth: 5\npoll_interval_ms: 250\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := rl.reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}

	st, err := rec.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.SettleTicks != 6 || st.HistoryDepth != 5 || st.Interval != 250*time.Millisecond {
		t.Fatalf("settings not applied: %+v", st)
	}
	if logger.Level().String() != "DEBUG" {
		t.Fatalf("log level = %s, want DEBUG", logger.Level())
	}

	if err := os.WriteFile(path, []byte("history_depth: 0\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := rl.reload(ctx); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
	if rl.cfg.HistoryDepth != 5 {
		t.Fatalf("rejected reload replaced config: %+v", rl.cfg)
	}
}
