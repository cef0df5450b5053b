// Package reconcile decides, tick by tick, when a monitor topology change has
// settled and which recorded layout should be brought back.
package reconcile

import (
	"fmt"

	"github.com/1broseidon/winpin/internal/history"
	"github.com/1broseidon/winpin/internal/snapshot"
)

// DefaultSettleTicks is how many ticks a new topology must persist before a
// restore is attempted.
const DefaultSettleTicks = 3

// Phase is the outcome of one tick.
type Phase int

const (
	// PhaseSteady means the topology is unchanged and the sample was recorded.
	PhaseSteady Phase = iota
	// PhaseSettling means a change was seen and the countdown is running.
	PhaseSettling
	// PhaseSettled means the countdown expired on this tick.
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseSteady:
		return "steady"
	case PhaseSettling:
		return "settling"
	case PhaseSettled:
		return "settled"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is the countdown state carried between ticks.
type State struct {
	Last      snapshot.Fingerprint
	Countdown int
}

// InitialState is the state before the first tick: nothing observed and no
// countdown running.
func InitialState() State {
	return State{Countdown: -1}
}

// Settling reports whether a countdown is running.
func (s State) Settling() bool { return s.Countdown >= 0 }

// Advance computes the state after observing fp. While settling, Last keeps
// the topology that was current before the change so the change stays
// visible on every following tick.
func Advance(prev State, fp snapshot.Fingerprint, settleTicks int) (State, Phase) {
	if prev.Last == 0 || fp == prev.Last {
		return State{Last: fp, Countdown: -1}, PhaseSteady
	}

	next := prev
	if next.Countdown < 0 {
		next.Countdown = settleTicks
	}
	if next.Countdown > 0 {
		next.Countdown--
		return next, PhaseSettling
	}
	return State{Last: fp, Countdown: -1}, PhaseSettled
}

// Decision describes what a tick did.
type Decision struct {
	Phase       Phase
	Fingerprint snapshot.Fingerprint
	Previous    snapshot.Fingerprint
	Countdown   int
	// Restore is the layout to bring back, set only when the topology
	// settled on a fingerprint with recorded history.
	Restore  *snapshot.Snapshot
	Recorded bool
}

// Engine runs Advance against a history store. It is not safe for
// concurrent use.
type Engine struct {
	state       State
	history     *history.Store
	settleTicks int
}

// NewEngine returns an engine in its initial state.
func NewEngine(store *history.Store, settleTicks int) *Engine {
	if settleTicks < 0 {
		settleTicks = 0
	}
	return &Engine{
		state:       InitialState(),
		history:     store,
		settleTicks: settleTicks,
	}
}

// State returns the current countdown state.
func (e *Engine) State() State { return e.state }

// History returns the backing store.
func (e *Engine) History() *history.Store { return e.history }

// SettleTicks returns the configured countdown length.
func (e *Engine) SettleTicks() int { return e.settleTicks }

// SetSettleTicks changes the countdown length for future changes. A running
// countdown is left alone.
func (e *Engine) SetSettleTicks(n int) {
	if n < 0 {
		n = 0
	}
	e.settleTicks = n
}

// Step feeds one sample through the state machine. On a settle tick the
// oldest recorded layout for the new topology is selected for restore and
// recorded again in place of the sample.
func (e *Engine) Step(s snapshot.Snapshot) Decision {
	e.history.GetOrCreate(s.Fingerprint)

	prev := e.state
	next, phase := Advance(prev, s.Fingerprint, e.settleTicks)
	e.state = next

	d := Decision{
		Phase:       phase,
		Fingerprint: s.Fingerprint,
		Previous:    prev.Last,
		Countdown:   next.Countdown,
	}
	if phase == PhaseSettling {
		return d
	}

	record := s
	if phase == PhaseSettled {
		if oldest, ok := e.history.Oldest(s.Fingerprint); ok {
			d.Restore = &oldest
			record = oldest
		}
	}
	e.history.Record(s.Fingerprint, record)
	d.Recorded = true
	return d
}
