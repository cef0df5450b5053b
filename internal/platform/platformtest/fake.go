// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/winpin/internal/platform"
)

// Call records one mutating backend call.
type Call struct {
	Op        string
	ID        platform.WindowID
	State     platform.ShowState
	Placement platform.Placement
}

// Backend is a scriptable in-memory window system.
type Backend struct {
	mu       sync.Mutex
	displays []platform.Display
	windows  map[platform.WindowID]platform.Window
	calls    []Call

	// FailApply makes ApplyPlacement fail for the listed windows.
	FailApply map[platform.WindowID]error
	// DisplaysErr is returned from Displays when set.
	DisplaysErr error
}

// NewBackend returns an empty fake backend.
func NewBackend() *Backend {
	return &Backend{windows: make(map[platform.WindowID]platform.Window)}
}

// SetDisplays replaces the display list.
func (b *Backend) SetDisplays(displays ...platform.Display) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.displays = append([]platform.Display(nil), displays...)
}

// PutWindow adds or replaces a window.
func (b *Backend) PutWindow(w platform.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows[w.ID] = w
}

// RemoveWindow destroys a window.
func (b *Backend) RemoveWindow(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.windows, id)
}

// Window returns the current state of a window.
func (b *Backend) Window(id platform.WindowID) (platform.Window, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	return w, ok
}

// Calls returns the recorded mutating calls in order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// ResetCalls forgets recorded calls.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

func (b *Backend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DisplaysErr != nil {
		return nil, b.DisplaysErr
	}
	return append([]platform.Display(nil), b.displays...), nil
}

func (b *Backend) Windows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platform.Window, 0, len(b.windows))
	for _, w := range b.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *Backend) IsWindow(id platform.WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.windows[id]
	return ok
}

func (b *Backend) FindWindowByTitle(title string) (platform.WindowID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var found []platform.WindowID
	for id, w := range b.windows {
		if w.Title == title {
			found = append(found, id)
		}
	}
	if len(found) == 0 {
		return 0, false
	}
	sort.Slice(found, func(i, j int) bool { return found[i] < found[j] })
	return found[0], true
}

func (b *Backend) ShowState(id platform.WindowID) (platform.ShowState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return 0, fmt.Errorf("window 0x%x not found", uint32(id))
	}
	return w.Placement.State, nil
}

func (b *Backend) SetShowState(id platform.WindowID, state platform.ShowState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return fmt.Errorf("window 0x%x not found", uint32(id))
	}
	b.calls = append(b.calls, Call{Op: "show", ID: id, State: state})
	w.Placement.State = state
	b.windows[id] = w
	return nil
}

func (b *Backend) ApplyPlacement(id platform.WindowID, placement platform.Placement) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return fmt.Errorf("window 0x%x not found", uint32(id))
	}
	b.calls = append(b.calls, Call{Op: "place", ID: id, Placement: placement})
	if err := b.FailApply[id]; err != nil {
		return err
	}
	w.Placement = placement
	b.windows[id] = w
	return nil
}

func (b *Backend) SetForeground(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.windows[id]; !ok {
		return fmt.Errorf("window 0x%x not found", uint32(id))
	}
	b.calls = append(b.calls, Call{Op: "foreground", ID: id})
	return nil
}

var _ platform.Backend = (*Backend)(nil)
