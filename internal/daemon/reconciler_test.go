package daemon

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/winpin/internal/history"
	"github.com/1broseidon/winpin/internal/platform"
	"github.com/1broseidon/winpin/internal/platform/platformtest"
	"github.com/1broseidon/winpin/internal/reconcile"
)

func rect(x, y, w, h int) platform.Rect {
	return platform.Rect{X: x, Y: y, Width: w, Height: h}
}

var (
	laptopOnly = []platform.Display{
		{ID: 0, Name: "eDP-1", Bounds: rect(0, 0, 1920, 1080), Usable: rect(0, 0, 1920, 1050)},
	}
	docked = []platform.Display{
		{ID: 0, Name: "eDP-1", Bounds: rect(0, 0, 1920, 1080), Usable: rect(0, 0, 1920, 1050)},
		{ID: 1, Name: "DP-1", Bounds: rect(1920, 0, 2560, 1440), Usable: rect(1920, 0, 2560, 1440)},
	}
)

func newTestReconciler(t *testing.T) (*Reconciler, *platformtest.Backend) {
	t.Helper()
	fake := platformtest.NewBackend()
	fake.SetDisplays(laptopOnly...)
	fake.PutWindow(platform.Window{
		ID:        10,
		Title:     "editor",
		Placement: platform.Placement{Normal: rect(100, 100, 800, 600)},
		Rank:      2,
	})
	r := NewReconciler(ReconcilerConfig{Interval: time.Hour, SettleTicks: 3, HistoryDepth: 3}, fake)
	return r, fake
}

func moveWindow(fake *platformtest.Backend, id platform.WindowID, r platform.Rect) {
	w, _ := fake.Window(id)
	w.Placement.Normal = r
	fake.PutWindow(w)
}

func startReconciler(t *testing.T, r *Reconciler) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-r.stopped
	})
	return cancel
}

func TestTick_RestoresLayoutWhenTopologyReturns(t *testing.T) {
	r, fake := newTestReconciler(t)

	for i := 0; i < 3; i++ {
		if d := r.Tick(); d.Phase != reconcile.PhaseSteady {
			t.Fatalf("tick %d: phase = %s, want steady", i, d.Phase)
		}
	}

	// Docking moves the editor onto the external monitor.
	fake.SetDisplays(docked...)
	moveWindow(fake, 10, rect(2000, 40, 1200, 900))
	for i := 0; i < 3; i++ {
		if d := r.Tick(); d.Phase != reconcile.PhaseSettling {
			t.Fatalf("docked tick %d: phase = %s, want settling", i, d.Phase)
		}
	}
	if d := r.Tick(); d.Phase != reconcile.PhaseSettled || d.Restore != nil {
		t.Fatalf("first docked settle = %+v, want settled without restore", d)
	}
	if len(fake.Calls()) != 0 {
		t.Fatalf("nothing should be restored for an unseen topology, got %+v", fake.Calls())
	}

	// Undocking; the window manager piles the editor into a corner.
	fake.SetDisplays(laptopOnly...)
	moveWindow(fake, 10, rect(0, 0, 1920, 1050))
	for i := 0; i < 3; i++ {
		r.Tick()
	}
	d := r.Tick()
	if d.Phase != reconcile.PhaseSettled || d.Restore == nil {
		t.Fatalf("undock settle = %+v, want restore", d)
	}

	w, _ := fake.Window(10)
	if w.Placement.Normal != rect(100, 100, 800, 600) {
		t.Fatalf("editor at %s, want original laptop placement", w.Placement.Normal)
	}
	if r.lastRestore == nil || r.lastRestore.Restored != 1 || r.lastRestore.Trigger != "auto" {
		t.Fatalf("lastRestore = %+v", r.lastRestore)
	}
}

func TestTick_SampleErrorSkipsTick(t *testing.T) {
	r, fake := newTestReconciler(t)
	r.Tick()
	before := r.engine.State()

	fake.DisplaysErr = errors.New("connection lost")
	d := r.Tick()
	if d != (reconcile.Decision{}) {
		t.Fatalf("expected empty decision on sample failure, got %+v", d)
	}
	if r.engine.State() != before {
		t.Fatalf("state changed on failed sample: %+v -> %+v", before, r.engine.State())
	}
	if !strings.Contains(r.lastErr, "connection lost") {
		t.Fatalf("lastErr = %q", r.lastErr)
	}

	fake.DisplaysErr = nil
	r.Tick()
	if r.lastErr != "" {
		t.Fatalf("lastErr not cleared: %q", r.lastErr)
	}
}

func TestSaveAndRestoreState(t *testing.T) {
	r, fake := newTestReconciler(t)
	startReconciler(t, r)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := r.RestoreState(ctx); !errors.Is(err, ErrNothingSaved) {
		t.Fatalf("RestoreState before save = %v, want ErrNothingSaved", err)
	}

	report, err := r.SaveState(ctx)
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if report.Windows != 1 || report.Monitors != 1 {
		t.Fatalf("save report = %+v", report)
	}
	if !strings.Contains(report.Dump, "editor") {
		t.Fatalf("dump missing window title:\n%s", report.Dump)
	}

	moveWindow(fake, 10, rect(5, 5, 300, 200))
	res, err := r.RestoreState(ctx)
	if err != nil {
		t.Fatalf("RestoreState: %v", err)
	}
	if res.Restored != 1 || res.Failed != 0 {
		t.Fatalf("restore result = %+v", res)
	}
	w, _ := fake.Window(10)
	if w.Placement.Normal != rect(100, 100, 800, 600) {
		t.Fatalf("editor at %s after manual restore", w.Placement.Normal)
	}

	st, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Saved == nil || st.LastRestore == nil || st.LastRestore.Trigger != "manual" {
		t.Fatalf("status = %+v", st)
	}
	if st.Saved.Dump != "" {
		t.Fatal("status should not carry the saved dump")
	}
}

func TestSaveState_DoesNotTouchHistory(t *testing.T) {
	r, _ := newTestReconciler(t)
	startReconciler(t, r)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	before, err := r.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if _, err := r.SaveState(ctx); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	after, err := r.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(before) != 1 || len(after) != 1 || before[0].Count != after[0].Count {
		t.Fatalf("history changed by manual save: %+v -> %+v", before, after)
	}
}

func TestMonitors_ReturnsFreshSample(t *testing.T) {
	r, fake := newTestReconciler(t)
	startReconciler(t, r)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fake.SetDisplays(docked...)
	monitors, fp, err := r.Monitors(ctx)
	if err != nil {
		t.Fatalf("Monitors: %v", err)
	}
	if len(monitors) != 2 || fp == 0 {
		t.Fatalf("Monitors() = %+v, %s", monitors, fp)
	}
	if monitors[1].Name != "DP-1" {
		t.Fatalf("monitors not ordered by position: %+v", monitors)
	}
}

func TestApplySettings(t *testing.T) {
	r, _ := newTestReconciler(t)
	startReconciler(t, r)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.ApplySettings(ctx, Settings{Interval: 2 * time.Hour, SettleTicks: 5, HistoryDepth: 7})
	if err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	st, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Interval != 2*time.Hour || st.SettleTicks != 5 || st.HistoryDepth != 7 {
		t.Fatalf("settings not applied: %+v", st)
	}
	if st.Topologies != 1 {
		t.Fatalf("history dropped by settings change: %d topologies", st.Topologies)
	}
}

func TestCommands_AfterStopReturnErrStopped(t *testing.T) {
	r, _ := newTestReconciler(t)
	cancel := startReconciler(t, r)
	cancel()
	<-r.stopped

	if _, err := r.SaveState(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("SaveState after stop = %v, want ErrStopped", err)
	}
	if _, err := r.Status(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("Status after stop = %v, want ErrStopped", err)
	}
}

func TestCommands_RespectContext(t *testing.T) {
	r, _ := newTestReconciler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Status(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Status with cancelled context = %v", err)
	}
}

// A command whose caller gives up after it was queued still runs later on
// the loop; the caller must not see anything it writes.
func TestCommands_CancelledAfterQueueingReturnZeroValues(t *testing.T) {
	r, _ := newTestReconciler(t)

	type result struct {
		st      Status
		entries []history.Entry
		err     error
	}

	calls := map[string]func(context.Context) result{
		"Status": func(ctx context.Context) result {
			st, err := r.Status(ctx)
			return result{st: st, err: err}
		},
		"History": func(ctx context.Context) result {
			entries, err := r.History(ctx)
			return result{entries: entries, err: err}
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			out := make(chan result, 1)
			go func() { out <- call(ctx) }()

			task := <-r.commands
			cancel()
			res := <-out
			task()

			if !errors.Is(res.err, context.Canceled) {
				t.Fatalf("err = %v, want context.Canceled", res.err)
			}
			if res.st != (Status{}) || res.entries != nil {
				t.Fatalf("expected zero values, got %+v", res)
			}
		})
	}
}
