package snapshot

import (
	"fmt"
	"time"

	"github.com/1broseidon/winpin/internal/platform"
)

// Source enumerates displays and top-level windows.
type Source interface {
	Displays() ([]platform.Display, error)
	Windows() ([]platform.Window, error)
}

// Sampler captures snapshots from a Source.
type Sampler struct {
	source Source
	now    func() time.Time
}

// NewSampler returns a Sampler reading from source.
func NewSampler(source Source) *Sampler {
	return &Sampler{source: source, now: time.Now}
}

// Create captures the current monitors and windows. Windows without a title
// and windows in the desktop layer are left out.
func (s *Sampler) Create() (Snapshot, error) {
	displays, err := s.source.Displays()
	if err != nil {
		return Snapshot{}, fmt.Errorf("enumerate displays: %w", err)
	}
	windows, err := s.source.Windows()
	if err != nil {
		return Snapshot{}, fmt.Errorf("enumerate windows: %w", err)
	}

	snap := Snapshot{
		Monitors: make([]Monitor, 0, len(displays)),
		Windows:  make([]Window, 0, len(windows)),
		Taken:    s.now(),
	}
	for _, d := range displays {
		snap.Monitors = append(snap.Monitors, Monitor{
			Name:     d.Name,
			Bounds:   d.Bounds,
			WorkArea: d.Usable,
		})
	}
	for _, w := range windows {
		if w.Title == "" {
			continue
		}
		if w.Rank <= platform.DesktopLayerRank {
			continue
		}
		snap.Windows = append(snap.Windows, Window{
			Title:     w.Title,
			Handle:    w.ID,
			Placement: w.Placement,
			State:     w.Placement.State,
			Rank:      w.Rank,
		})
	}

	SortMonitors(snap.Monitors)
	SortWindows(snap.Windows)
	snap.Fingerprint = FingerprintOf(snap.Monitors)
	return snap, nil
}
