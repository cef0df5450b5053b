package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/1broseidon/winpin/internal/config"
	"github.com/1broseidon/winpin/internal/daemon"
	"github.com/1broseidon/winpin/internal/hotkeys"
	"github.com/1broseidon/winpin/internal/ipc"
	"github.com/1broseidon/winpin/internal/logging"
	"github.com/1broseidon/winpin/internal/metrics"
	"github.com/1broseidon/winpin/internal/platform"
)

func loggingOptions(cfg *config.Config) logging.Options {
	return logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxFiles,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}
}

func settingsFrom(cfg *config.Config) daemon.Settings {
	return daemon.Settings{
		Interval:     cfg.PollInterval(),
		SettleTicks:  cfg.SettleTicks,
		HistoryDepth: cfg.HistoryDepth,
	}
}

// reloader re-reads the config file and pushes the runtime-changeable parts
// into the running daemon. Calls are serialized.
type reloader struct {
	mu     sync.Mutex
	path   string
	cfg    *config.Config
	rec    *daemon.Reconciler
	logger *logging.Logger
}

func (r *reloader) reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := loadConfig(r.path)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	next := res.Config

	if err := r.logger.SetLevel(next.LogLevel); err != nil {
		return err
	}
	if err := r.rec.ApplySettings(ctx, settingsFrom(next)); err != nil {
		return fmt.Errorf("apply settings: %w", err)
	}
	if next.Display != r.cfg.Display || next.MetricsAddr != r.cfg.MetricsAddr ||
		next.Logging != r.cfg.Logging || next.Hotkeys != r.cfg.Hotkeys {
		r.logger.Warn("display, metrics_addr, logging and hotkeys changes take effect after a restart")
	}
	r.cfg = next
	r.logger.Info("config reloaded", "files", res.Files)
	return nil
}

func serveMetrics(addr string, logger *slog.Logger) (*http.Server, error) {
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("metrics endpoint listening", "addr", addr)
	return srv, nil
}

// bindHotkeys registers the optional save and restore key sequences.
func bindHotkeys(ctx context.Context, keys config.Hotkeys, backend platform.Backend, rec *daemon.Reconciler, logger *slog.Logger) error {
	if keys == (config.Hotkeys{}) {
		return nil
	}
	hk, err := hotkeys.NewHandler(backend, logger)
	if err != nil {
		return err
	}

	save := func() {
		callCtx, done := context.WithTimeout(ctx, 10*time.Second)
		defer done()
		if _, err := rec.SaveState(callCtx); err != nil {
			logger.Error("hotkey save failed", "error", err)
		}
	}
	restore := func() {
		callCtx, done := context.WithTimeout(ctx, 10*time.Second)
		defer done()
		if _, err := rec.RestoreState(callCtx); err != nil {
			logger.Error("hotkey restore failed", "error", err)
		}
	}
	if err := hk.Bind("save", keys.Save, save); err != nil {
		return err
	}
	if err := hk.Bind("restore", keys.Restore, restore); err != nil {
		hk.Unbind()
		return err
	}
	return nil
}

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "winpin daemon [--config PATH]", "Run the layout keeper in the foreground.")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/winpin/config.yaml)")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	res, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config

	logger, err := logging.New(loggingOptions(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		return 1
	}
	defer logger.Close()

	watchPath := *configPath
	if watchPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			watchPath = p
		}
	}
	logger.Info("configuration loaded",
		"files", res.Files,
		"poll_interval", cfg.PollInterval(),
		"settle_ticks", cfg.SettleTicks,
		"history_depth", cfg.HistoryDepth)

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		logger.Error("failed to connect to display", "error", err)
		return 1
	}
	defer backend.Disconnect()

	rec := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval:     cfg.PollInterval(),
		SettleTicks:  cfg.SettleTicks,
		HistoryDepth: cfg.HistoryDepth,
		Logger:       logger.Logger,
	}, backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := &reloader{path: *configPath, cfg: cfg, rec: rec, logger: logger}

	if cfg.MetricsAddr != "" {
		srv, err := serveMetrics(cfg.MetricsAddr, logger.Logger)
		if err != nil {
			logger.Error("failed to start metrics endpoint", "error", err)
			return 1
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	ipcServer, err := ipc.NewServer(rec, ipc.Hooks{
		Reload: func() error {
			reloadCtx, done := context.WithTimeout(ctx, 5*time.Second)
			defer done()
			return rl.reload(reloadCtx)
		},
		Shutdown: cancel,
	}, logger.Logger)
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer ipcServer.Stop()

	if err := bindHotkeys(ctx, cfg.Hotkeys, backend, rec, logger.Logger); err != nil {
		logger.Warn("hotkeys disabled", "error", err)
	} else if cfg.Hotkeys != (config.Hotkeys{}) {
		go backend.EventLoop()
		defer backend.StopEventLoop()
	}

	fileChanged := make(chan struct{}, 1)
	if cfg.WatchConfig && watchPath != "" {
		go func() {
			if err := config.Watch(ctx, watchPath, logger.Logger, fileChanged); err != nil {
				logger.Warn("config watching disabled", "path", watchPath, "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					logger.Info("received SIGHUP, reloading config")
					if err := rl.reload(ctx); err != nil {
						logger.Error("config reload failed", "error", err)
					}
					continue
				}
				logger.Info("shutting down winpin daemon", "signal", sig.String())
				cancel()
				return
			case <-fileChanged:
				logger.Info("config file changed, reloading")
				if err := rl.reload(ctx); err != nil {
					logger.Error("config reload failed", "error", err)
				}
			}
		}
	}()

	rec.Run(ctx)
	return 0
}
