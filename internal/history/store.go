// Package history keeps a bounded list of recent snapshots per monitor
// topology.
package history

import (
	"sort"
	"time"

	"github.com/1broseidon/winpin/internal/snapshot"
)

// DefaultCapacity is the number of snapshots kept per topology.
const DefaultCapacity = 3

// Store maps a topology fingerprint to its snapshots, oldest first.
// It is not safe for concurrent use.
type Store struct {
	capacity int
	entries  map[snapshot.Fingerprint][]snapshot.Snapshot
}

// Entry summarizes the history of one topology.
type Entry struct {
	Fingerprint snapshot.Fingerprint
	Monitors    []snapshot.Monitor
	Count       int
	Oldest      time.Time
	Newest      time.Time
}

// NewStore returns an empty store. A capacity below one is raised to one.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		entries:  make(map[snapshot.Fingerprint][]snapshot.Snapshot),
	}
}

// Capacity returns the per-topology limit.
func (s *Store) Capacity() int { return s.capacity }

// SetCapacity changes the per-topology limit, dropping the oldest snapshots
// of any entry that no longer fits.
func (s *Store) SetCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	s.capacity = capacity
	for fp, list := range s.entries {
		if len(list) > capacity {
			s.entries[fp] = append([]snapshot.Snapshot(nil), list[len(list)-capacity:]...)
		}
	}
}

// GetOrCreate returns the snapshots recorded for fp, creating an empty entry
// on first use. The returned slice must not be modified.
func (s *Store) GetOrCreate(fp snapshot.Fingerprint) []snapshot.Snapshot {
	list, ok := s.entries[fp]
	if !ok {
		list = []snapshot.Snapshot{}
		s.entries[fp] = list
	}
	return list
}

// Record appends snap to the entry for fp. When the entry is full the oldest
// snapshots are dropped first so that at most capacity remain.
func (s *Store) Record(fp snapshot.Fingerprint, snap snapshot.Snapshot) {
	list := s.entries[fp]
	if keep := s.capacity - 1; len(list) > keep {
		list = list[len(list)-keep:]
	}
	next := make([]snapshot.Snapshot, 0, len(list)+1)
	next = append(next, list...)
	next = append(next, snap.Clone())
	s.entries[fp] = next
}

// Oldest returns the least recently recorded snapshot for fp.
func (s *Store) Oldest(fp snapshot.Fingerprint) (snapshot.Snapshot, bool) {
	list := s.entries[fp]
	if len(list) == 0 {
		return snapshot.Snapshot{}, false
	}
	return list[0].Clone(), true
}

// Len returns the number of snapshots recorded for fp.
func (s *Store) Len(fp snapshot.Fingerprint) int {
	return len(s.entries[fp])
}

// Topologies returns the number of fingerprints with at least one snapshot.
func (s *Store) Topologies() int {
	n := 0
	for _, list := range s.entries {
		if len(list) > 0 {
			n++
		}
	}
	return n
}

// Entries summarizes every non-empty entry, ordered by fingerprint.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for fp, list := range s.entries {
		if len(list) == 0 {
			continue
		}
		newest := list[len(list)-1]
		out = append(out, Entry{
			Fingerprint: fp,
			Monitors:    append([]snapshot.Monitor(nil), newest.Monitors...),
			Count:       len(list),
			Oldest:      list[0].Taken,
			Newest:      newest.Taken,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fingerprint < out[j].Fingerprint })
	return out
}
