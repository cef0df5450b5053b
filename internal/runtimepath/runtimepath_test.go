package runtimepath

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallsBackWithoutXDGRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("TMPDIR", t.TempDir())

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	uid := strconv.Itoa(os.Getuid())
	wantRun := filepath.Join("/run/user", uid)
	wantTmp := filepath.Join(os.TempDir(), "winpin-runtime-"+uid)
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
	if !isDir(got) {
		t.Fatalf("Dir() = %q is not a directory", got)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)
	t.Setenv(SocketEnv, "")

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if want := filepath.Join(td, "winpin.sock"); socket != want {
		t.Fatalf("SocketPath() = %q, want %q", socket, want)
	}

	override := filepath.Join(td, "other.sock")
	t.Setenv(SocketEnv, override)
	if socket, _ := SocketPath(); socket != override {
		t.Fatalf("SocketPath() with %s = %q, want %q", SocketEnv, socket, override)
	}
}
