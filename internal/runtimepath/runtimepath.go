// Package runtimepath locates the per-user runtime directory holding the
// daemon control socket.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// SocketEnv overrides the socket location, for running a second daemon
// against another display.
const SocketEnv = "WINPIN_SOCKET"

const socketName = "winpin.sock"

// Dir returns the first usable of $XDG_RUNTIME_DIR, /run/user/<uid> and a
// private /tmp/winpin-runtime-<uid> directory (created on demand).
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := strconv.Itoa(os.Getuid())
	if dir := filepath.Join("/run/user", uid); isDir(dir) {
		return dir, nil
	}

	dir := filepath.Join(os.TempDir(), "winpin-runtime-"+uid)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	return dir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, socketName), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
