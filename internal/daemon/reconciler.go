package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/winpin/internal/history"
	"github.com/1broseidon/winpin/internal/metrics"
	"github.com/1broseidon/winpin/internal/platform"
	"github.com/1broseidon/winpin/internal/reconcile"
	"github.com/1broseidon/winpin/internal/restore"
	"github.com/1broseidon/winpin/internal/snapshot"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval     time.Duration
	SettleTicks  int
	HistoryDepth int
	Logger       *slog.Logger
}

// Reconciler samples the desktop on a fixed period and restores window
// layouts when a known monitor topology comes back. Ticks and user commands
// are serialized on the goroutine running Run, which owns all state below.
type Reconciler struct {
	interval time.Duration
	ticker   *time.Ticker

	sampler  *snapshot.Sampler
	engine   *reconcile.Engine
	restorer *restore.Executor
	logger   *slog.Logger

	commands chan func()
	stopped  chan struct{}

	started     time.Time
	ticks       uint64
	lastErr     string
	lastSample  snapshot.Snapshot
	lastRestore *RestoreReport
	saved       *snapshot.Snapshot
}

// NewReconciler creates a reconciler sampling and restoring through backend.
func NewReconciler(cfg ReconcilerConfig, backend platform.Backend) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	depth := cfg.HistoryDepth
	if depth <= 0 {
		depth = history.DefaultCapacity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reconciler{
		interval: interval,
		sampler:  snapshot.NewSampler(backend),
		engine:   reconcile.NewEngine(history.NewStore(depth), cfg.SettleTicks),
		restorer: restore.NewExecutor(backend, logger),
		logger:   logger,
		commands: make(chan func()),
		stopped:  make(chan struct{}),
		started:  time.Now(),
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
// It must be called at most once.
func (r *Reconciler) Run(ctx context.Context) {
	r.ticker = time.NewTicker(r.interval)
	defer r.ticker.Stop()
	defer close(r.stopped)

	r.logger.Info("reconciler started",
		"interval", r.interval,
		"settle_ticks", r.engine.SettleTicks(),
		"history_depth", r.engine.History().Capacity())

	r.Tick()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-r.ticker.C:
			r.Tick()
		case fn := <-r.commands:
			fn()
		}
	}
}

// Tick performs a single reconciliation pass. Outside of tests it is only
// called from Run.
func (r *Reconciler) Tick() (d reconcile.Decision) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	r.ticks++
	start := time.Now()
	snap, err := r.sampler.Create()
	metrics.ObserveSample(time.Since(start).Seconds())
	if err != nil {
		metrics.IncSampleError()
		r.lastErr = err.Error()
		r.logger.Warn("reconciler: sample failed, skipping tick", "error", err)
		return d
	}
	r.lastErr = ""
	r.lastSample = snap

	r.logger.Debug("reconciler: tick",
		"fingerprint", snap.Fingerprint.String(),
		"monitors", len(snap.Monitors),
		"windows", len(snap.Windows))

	d = r.engine.Step(snap)
	metrics.IncTick(d.Phase.String())

	switch d.Phase {
	case reconcile.PhaseSettling:
		r.logger.Info("reconciler: monitor layout changed, waiting to settle",
			"from", d.Previous.String(),
			"to", d.Fingerprint.String(),
			"countdown", d.Countdown)
	case reconcile.PhaseSettled:
		metrics.IncTopologyChange()
		if d.Restore == nil {
			r.logger.Info("reconciler: new monitor layout, nothing recorded yet",
				"fingerprint", d.Fingerprint.String())
			break
		}
		r.logger.Info("reconciler: restoring layout",
			"fingerprint", d.Fingerprint.String(),
			"windows", len(d.Restore.Windows),
			"captured", d.Restore.Taken.Format(time.RFC3339))
		r.runRestore(*d.Restore, metrics.TriggerAuto)
	}

	metrics.SetTopologies(r.engine.History().Topologies())
	return d
}

func (r *Reconciler) runRestore(s snapshot.Snapshot, trigger string) restore.Result {
	res := r.restorer.Restore(s)
	metrics.RecordRestore(trigger, res.Restored, res.Skipped, res.Failed)
	r.lastRestore = &RestoreReport{
		Trigger:     trigger,
		At:          time.Now(),
		Fingerprint: s.Fingerprint,
		Restored:    res.Restored,
		Skipped:     res.Skipped,
		Failed:      res.Failed,
	}
	r.logger.Info("reconciler: restore finished",
		"trigger", trigger,
		"restored", res.Restored,
		"skipped", res.Skipped,
		"failed", res.Failed)
	return res
}
