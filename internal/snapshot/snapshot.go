package snapshot

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/winpin/internal/platform"
)

// Monitor is a display as it was when the snapshot was taken.
type Monitor struct {
	Name     string
	Bounds   platform.Rect
	WorkArea platform.Rect
}

// Window is a captured top-level window. Handle is only a hint: it has to be
// checked again before use, and Title is the fallback identity.
type Window struct {
	Title     string
	Handle    platform.WindowID
	Placement platform.Placement
	State     platform.ShowState
	Rank      int
}

// Snapshot is the window layout for one monitor topology at one point in time.
type Snapshot struct {
	Monitors    []Monitor
	Windows     []Window
	Fingerprint Fingerprint
	Taken       time.Time
}

// Empty reports whether the snapshot holds neither monitors nor windows.
func (s Snapshot) Empty() bool {
	return len(s.Monitors) == 0 && len(s.Windows) == 0
}

// Clone returns a copy that shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Monitors = append([]Monitor(nil), s.Monitors...)
	out.Windows = append([]Window(nil), s.Windows...)
	return out
}

// SortMonitors orders monitors left to right, then top to bottom.
func SortMonitors(monitors []Monitor) {
	sort.SliceStable(monitors, func(i, j int) bool {
		a, b := monitors[i].Bounds, monitors[j].Bounds
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
}

// SortWindows orders windows front-most first.
func SortWindows(windows []Window) {
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Rank > windows[j].Rank
	})
}

// Describe writes a human-readable dump of the snapshot.
func (s Snapshot) Describe(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Fingerprint: %s\n", s.Fingerprint)
	b.WriteString("Monitors:\n")
	for _, m := range s.Monitors {
		fmt.Fprintf(&b, "  %s: %d,%d %d,%d\n", m.Name, m.Bounds.X, m.Bounds.Y, m.Bounds.Right(), m.Bounds.Bottom())
	}
	b.WriteString("Windows:\n")
	for _, win := range s.Windows {
		fmt.Fprintf(&b, "  0x%08x: %s\n", uint32(win.Handle), win.Title)
		fmt.Fprintf(&b, "      rect = %s state = %s\n", win.Placement.Normal, win.State)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
