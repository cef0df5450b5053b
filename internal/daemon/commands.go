package daemon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/winpin/internal/history"
	"github.com/1broseidon/winpin/internal/metrics"
	"github.com/1broseidon/winpin/internal/restore"
	"github.com/1broseidon/winpin/internal/snapshot"
)

var (
	// ErrNothingSaved is returned by RestoreState before any SaveState.
	ErrNothingSaved = errors.New("no saved state")
	// ErrStopped is returned once the reconcile loop has exited.
	ErrStopped = errors.New("reconciler is not running")
)

// RestoreReport describes the most recent restore.
type RestoreReport struct {
	Trigger     string
	At          time.Time
	Fingerprint snapshot.Fingerprint
	Restored    int
	Skipped     int
	Failed      int
}

// SaveReport describes a manual save.
type SaveReport struct {
	Fingerprint snapshot.Fingerprint
	Monitors    int
	Windows     int
	Taken       time.Time
	Dump        string
}

// Status is a point-in-time view of the reconcile loop.
type Status struct {
	Started      time.Time
	Interval     time.Duration
	SettleTicks  int
	HistoryDepth int
	Ticks        uint64
	Fingerprint  snapshot.Fingerprint
	Countdown    int
	Topologies   int
	Windows      int
	LastError    string
	Saved        *SaveReport
	LastRestore  *RestoreReport
}

// Settings are the parts of the configuration that can change at runtime.
type Settings struct {
	Interval     time.Duration
	SettleTicks  int
	HistoryDepth int
}

// do runs fn on the reconcile goroutine and waits for it to finish.
func (r *Reconciler) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		defer func() {
			if err := recover(); err != nil {
				r.logger.Error("reconciler command panic recovered", "error", err)
			}
		}()
		fn()
	}

	select {
	case r.commands <- task:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SaveState captures the current layout into the manual slot. The manual
// slot is independent of the per-topology history.
func (r *Reconciler) SaveState(ctx context.Context) (SaveReport, error) {
	var (
		report SaveReport
		err    error
	)
	if doErr := r.do(ctx, func() {
		var snap snapshot.Snapshot
		snap, err = r.sampler.Create()
		if err != nil {
			err = fmt.Errorf("capture state: %w", err)
			return
		}
		r.saved = &snap
		report = saveReport(snap)
		r.logger.Info("state saved", "windows", len(snap.Windows), "fingerprint", snap.Fingerprint.String())
		r.logger.Debug("saved state", "dump", report.Dump)
	}); doErr != nil {
		return SaveReport{}, doErr
	}
	return report, err
}

// RestoreState replays the manual slot.
func (r *Reconciler) RestoreState(ctx context.Context) (restore.Result, error) {
	var (
		res restore.Result
		err error
	)
	if doErr := r.do(ctx, func() {
		if r.saved == nil {
			err = ErrNothingSaved
			return
		}
		r.logger.Info("restoring saved state", "windows", len(r.saved.Windows))
		res = r.runRestore(*r.saved, metrics.TriggerManual)
	}); doErr != nil {
		return restore.Result{}, doErr
	}
	return res, err
}

// Status reports the loop state.
func (r *Reconciler) Status(ctx context.Context) (Status, error) {
	var st Status
	if err := r.do(ctx, func() {
		state := r.engine.State()
		st = Status{
			Started:      r.started,
			Interval:     r.interval,
			SettleTicks:  r.engine.SettleTicks(),
			HistoryDepth: r.engine.History().Capacity(),
			Ticks:        r.ticks,
			Fingerprint:  state.Last,
			Countdown:    state.Countdown,
			Topologies:   r.engine.History().Topologies(),
			Windows:      len(r.lastSample.Windows),
			LastError:    r.lastErr,
		}
		if r.saved != nil {
			report := saveReport(*r.saved)
			report.Dump = ""
			st.Saved = &report
		}
		if r.lastRestore != nil {
			lr := *r.lastRestore
			st.LastRestore = &lr
		}
	}); err != nil {
		return Status{}, err
	}
	return st, nil
}

// Monitors samples the current monitor layout.
func (r *Reconciler) Monitors(ctx context.Context) ([]snapshot.Monitor, snapshot.Fingerprint, error) {
	var (
		monitors []snapshot.Monitor
		fp       snapshot.Fingerprint
		err      error
	)
	if doErr := r.do(ctx, func() {
		var snap snapshot.Snapshot
		snap, err = r.sampler.Create()
		if err != nil {
			return
		}
		monitors, fp = snap.Monitors, snap.Fingerprint
	}); doErr != nil {
		return nil, 0, doErr
	}
	return monitors, fp, err
}

// History lists recorded topologies.
func (r *Reconciler) History(ctx context.Context) ([]history.Entry, error) {
	var entries []history.Entry
	if err := r.do(ctx, func() {
		entries = r.engine.History().Entries()
	}); err != nil {
		return nil, err
	}
	return entries, nil
}

// ApplySettings changes timing and history depth without dropping history.
func (r *Reconciler) ApplySettings(ctx context.Context, s Settings) error {
	return r.do(ctx, func() {
		r.applySettings(s)
	})
}

func (r *Reconciler) applySettings(s Settings) {
	if s.Interval > 0 && s.Interval != r.interval {
		r.interval = s.Interval
		if r.ticker != nil {
			r.ticker.Reset(s.Interval)
		}
	}
	r.engine.SetSettleTicks(s.SettleTicks)
	if s.HistoryDepth > 0 {
		r.engine.History().SetCapacity(s.HistoryDepth)
	}
	r.logger.Info("reconciler settings applied",
		"interval", r.interval,
		"settle_ticks", r.engine.SettleTicks(),
		"history_depth", r.engine.History().Capacity())
}

func saveReport(s snapshot.Snapshot) SaveReport {
	var b strings.Builder
	_ = s.Describe(&b)
	return SaveReport{
		Fingerprint: s.Fingerprint,
		Monitors:    len(s.Monitors),
		Windows:     len(s.Windows),
		Taken:       s.Taken,
		Dump:        b.String(),
	}
}
