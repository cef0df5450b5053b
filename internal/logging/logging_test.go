package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew_PlainOutputAndRuntimeLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Stderr: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer logger.Close()

	logger.Debug("hidden")
	logger.Info("shown", "fingerprint", "00ff")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug message logged at info level:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "msg=shown fingerprint=00ff") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "\033[") {
		t.Fatalf("non-terminal output must not be colored:\n%s", buf.String())
	}

	if err := logger.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	logger.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("debug message missing after SetLevel:\n%s", buf.String())
	}
}

func TestNew_WritesRotatingFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "winpin.log")
	logger, err := New(Options{Level: "info", File: path, Stderr: &console})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Info("to file")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Fatalf("log file missing message:\n%s", data)
	}
	if !strings.Contains(console.String(), "to file") {
		t.Fatalf("console missing message:\n%s", console.String())
	}
	if logger.file.MaxSize != DefaultMaxSizeMB || logger.file.MaxBackups != DefaultMaxBackups {
		t.Fatalf("rotation defaults not applied: %+v", logger.file)
	}
}

func TestColorTextHandler_KeepsColorWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewColorTextHandler(&buf, nil)).With("component", "daemon")
	logger.Warn("careful")
	out := buf.String()
	if !strings.Contains(out, "\033[33mWARN") {
		t.Fatalf("expected yellow level prefix, got %q", out)
	}
	if !strings.Contains(out, "component=daemon") {
		t.Fatalf("expected attrs to be kept, got %q", out)
	}
}
