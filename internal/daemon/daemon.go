package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"warble/internal/config"
	"warble/internal/delivery"
	"warble/internal/deps"
	"warble/internal/fetch"
	"warble/internal/jobs"
	"warble/internal/logging"
	"warble/internal/notifications"
	"warble/internal/services"
	"warble/internal/session"
	"warble/internal/workspace"
)

// Daemon coordinates the fetch pipeline services and enforces
// single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	ledger     *jobs.Store
	sessions   *session.Store
	workspaces *workspace.Manager
	orch       *fetch.Orchestrator
	adapter    *delivery.Adapter
	notifier   notifications.Service
	logPath    string

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	PID            int
	JobsDBPath     string
	LockFilePath   string
	LogFilePath    string
	ActiveSessions int
	Dependencies   []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(
	cfg *config.Config,
	ledger *jobs.Store,
	sessions *session.Store,
	workspaces *workspace.Manager,
	orch *fetch.Orchestrator,
	adapter *delivery.Adapter,
	logger *slog.Logger,
) (*Daemon, error) {
	if cfg == nil || ledger == nil || sessions == nil || workspaces == nil || orch == nil || adapter == nil || logger == nil {
		return nil, errors.New("daemon requires config, ledger, sessions, workspaces, orchestrator, adapter, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "warbled.lock")
	d := &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		ledger:     ledger,
		sessions:   sessions,
		workspaces: workspaces,
		orch:       orch,
		adapter:    adapter,
		notifier:   notifications.NewService(cfg),
		logPath:    filepath.Join(cfg.Paths.LogDir, "warble.log"),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock, verifies storage and external binaries,
// recovers state left behind by a previous run, and brings up the HTTP API
// and background janitors.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another warble daemon instance is already running")
	}

	// Storage must be writable before anything is promised to clients.
	if err := d.cfg.ProbeStorage(); err != nil {
		_ = d.lock.Unlock()
		return services.Wrap(services.ErrStorageUnavailable, "daemon", "storage probe", "", err)
	}

	statuses := deps.Check(d.cfg)
	if !deps.AllAvailable(statuses) {
		_ = d.lock.Unlock()
		return fmt.Errorf("missing dependencies: %s", deps.Describe(statuses))
	}

	d.recover(ctx)

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	go d.sessions.Janitor(d.ctx, time.Minute)
	go d.workspaceJanitor(d.ctx)

	d.running.Store(true)
	d.logger.Info("warble daemon started", logging.String("lock", d.lockPath))
	return nil
}

// recover cleans up whatever a previous run left behind: orphaned
// workspaces on disk and ledger entries stuck in flight. Recovery failures
// are logged, not fatal, because a fresh run can still make progress.
func (d *Daemon) recover(ctx context.Context) {
	result := workspace.SweepOrphans(d.workspaces.Base(), d.logger)
	if len(result.Removed) > 0 || len(result.Errors) > 0 {
		d.logger.Info("startup workspace sweep",
			logging.Int("removed", len(result.Removed)),
			logging.Int("errors", len(result.Errors)),
		)
	}

	failed, err := d.ledger.FailInFlight(ctx, jobs.RestartReason)
	if err != nil {
		d.logger.Warn("failed to mark interrupted jobs", logging.Error(err))
	} else if failed > 0 {
		d.logger.Info("marked interrupted jobs as failed", logging.Int64("count", failed))
	}
}

// workspaceJanitor periodically removes workspaces older than the stale
// cutoff. In normal operation nothing qualifies; anything swept here was
// leaked by a crashed request.
func (d *Daemon) workspaceJanitor(ctx context.Context) {
	maxAge := time.Duration(d.cfg.Workspaces.StaleAfterSeconds) * time.Second
	if maxAge <= 0 {
		return
	}
	interval := maxAge / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := workspace.SweepStale(d.workspaces.Base(), maxAge, d.logger)
			if len(result.Removed) > 0 {
				d.logger.Warn("swept stale workspaces", logging.Int("count", len(result.Removed)))
				for _, path := range result.Removed {
					_ = d.notifier.NotifyWorkspaceLeak(ctx, path)
				}
			}
		}
	}
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("warble daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.ledger != nil {
		return d.ledger.Close()
	}
	return nil
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Addr reports the address the HTTP API is listening on, empty before Start.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:        d.running.Load(),
		PID:            os.Getpid(),
		JobsDBPath:     d.ledger.Path(),
		LockFilePath:   d.lockPath,
		LogFilePath:    d.LogPath(),
		ActiveSessions: d.sessions.Len(),
		Dependencies:   deps.Check(d.cfg),
	}
}
