// Package restore puts windows back where a snapshot recorded them.
package restore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/winpin/internal/platform"
	"github.com/1broseidon/winpin/internal/snapshot"
)

// ErrNotFound is reported for windows that no longer exist under either
// their handle or their title.
var ErrNotFound = errors.New("window not found")

// Outcome is the result of restoring one window.
type Outcome int

const (
	Restored Outcome = iota
	Skipped
	Failed
)

// Result summarizes a restore pass.
type Result struct {
	Restored int
	Skipped  int
	Failed   int
	Errors   []error
}

// Executor applies snapshots through a platform backend.
type Executor struct {
	backend platform.Backend
	logger  *slog.Logger
}

// NewExecutor returns an executor using backend. A nil logger discards output.
func NewExecutor(backend platform.Backend, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{backend: backend, logger: logger}
}

// Restore replays every window of s, back-most first, so the front-most
// window ends up on top. A window that fails does not stop the others.
func (e *Executor) Restore(s snapshot.Snapshot) Result {
	var res Result
	for i := len(s.Windows) - 1; i >= 0; i-- {
		outcome, err := e.RestoreWindow(s.Windows[i])
		switch outcome {
		case Restored:
			res.Restored++
		case Skipped:
			res.Skipped++
		case Failed:
			res.Failed++
			res.Errors = append(res.Errors, err)
		}
	}
	return res
}

// RestoreWindow restores a single window.
func (e *Executor) RestoreWindow(w snapshot.Window) (Outcome, error) {
	id, ok := e.resolve(w)
	if !ok {
		e.logger.Debug("restore: window gone, skipping", "title", w.Title, "handle", uint32(w.Handle))
		return Skipped, ErrNotFound
	}

	current, err := e.backend.ShowState(id)
	if err != nil {
		return e.fail(w, id, fmt.Errorf("read show state: %w", err))
	}
	if current != platform.ShowNormal {
		if err := e.backend.SetShowState(id, platform.ShowNormal); err != nil {
			return e.fail(w, id, fmt.Errorf("reset to normal: %w", err))
		}
	}

	placement := platform.Placement{Normal: w.Placement.Normal, State: w.State}
	// Applied twice: the first pass can land on a monitor with a different
	// scale factor and be resized by it.
	for pass := 0; pass < 2; pass++ {
		if err := e.backend.ApplyPlacement(id, placement); err != nil {
			return e.fail(w, id, fmt.Errorf("apply placement: %w", err))
		}
	}

	if w.State != platform.ShowMinimized {
		if err := e.backend.SetForeground(id); err != nil {
			return e.fail(w, id, fmt.Errorf("set foreground: %w", err))
		}
	}

	e.logger.Debug("restore: window restored",
		"title", w.Title,
		"window_id", uint32(id),
		"rect", w.Placement.Normal.String(),
		"state", w.State.String())
	return Restored, nil
}

func (e *Executor) resolve(w snapshot.Window) (platform.WindowID, bool) {
	if w.Handle != 0 && e.backend.IsWindow(w.Handle) {
		return w.Handle, true
	}
	if w.Title == "" {
		return 0, false
	}
	return e.backend.FindWindowByTitle(w.Title)
}

func (e *Executor) fail(w snapshot.Window, id platform.WindowID, err error) (Outcome, error) {
	err = fmt.Errorf("%q (0x%x): %w", w.Title, uint32(id), err)
	e.logger.Warn("restore: window failed", "error", err)
	return Failed, err
}
