// Package daemon coordinates the conversation manager, the run registry and
// the pipeline runner, and enforces single-instance execution.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"clipper/internal/config"
	"clipper/internal/conversation"
	"clipper/internal/deps"
	"clipper/internal/fileutil"
	"clipper/internal/logging"
	"clipper/internal/pipeline"
	"clipper/internal/runs"
)

// workPrefix names every per-run intermediate; the startup sweep removes
// anything carrying it.
const workPrefix = "clip_"

type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *runs.Store
	sessions *conversation.Manager
	runner   *pipeline.Runner

	lockPath string
	lock     *flock.Flock

	// mu guards the lifecycle state below; Say snapshots the run context
	// under it so a racing Stop cannot hand it a nil context.
	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	RegistryPath string
	LockFilePath string
	SocketPath   string
	LogPath      string
	Runs         []runs.Run
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *runs.Store, sessions *conversation.Manager, runner *pipeline.Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || sessions == nil || runner == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, sessions, runner, and logger")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		sessions: sessions,
		runner:   runner,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and clears out whatever a previous process
// left behind. No recorded run can still be live at this point, so the
// registry is purged and the work area swept.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return errors.New("daemon already running")
	}
	d.mu.Unlock()

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipper daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)

	purged, err := d.store.Purge(runCtx)
	if err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("purge stale runs: %w", err)
	}
	if purged > 0 {
		d.logger.Info("purged stale runs", logging.Int("count", purged))
	}
	if removed, err := fileutil.SweepPrefix(d.cfg.Paths.WorkDir, workPrefix); err != nil {
		d.logger.Warn("startup sweep incomplete", logging.Error(err))
	} else if removed > 0 {
		d.logger.Info("swept stale intermediates", logging.Int("removed", removed))
	}

	for _, status := range deps.Check(d.cfg) {
		if status.Available || status.Optional {
			continue
		}
		d.logger.Warn("required tool unavailable",
			logging.String("tool", status.Name),
			logging.String("detail", status.Detail))
	}

	d.mu.Lock()
	d.ctx, d.cancel = runCtx, cancel
	d.running = true
	d.mu.Unlock()
	d.logger.Info("clipper daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop waits for in-flight runs and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel := d.cancel
	d.ctx, d.cancel = nil, nil
	d.mu.Unlock()

	cancel()
	d.runner.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.logger.Info("clipper daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Say routes one line of user text into the named session. When the line
// completes a request, the pipeline run is launched and its ID returned.
func (d *Daemon) Say(ctx context.Context, sessionID, text string) (string, string, error) {
	d.mu.Lock()
	runCtx := d.ctx
	running := d.running
	d.mu.Unlock()
	if !running || runCtx == nil {
		return "", "", errors.New("daemon not running")
	}

	reply, req := d.sessions.Input(sessionID, text)
	if req == nil {
		return reply, "", nil
	}

	// The run outlives this RPC; it is bound to the daemon context.
	runID, err := d.runner.Launch(runCtx, sessionID, *req)
	if err != nil {
		return "", "", fmt.Errorf("launch run: %w", err)
	}
	d.logger.Info("run launched",
		logging.String("run_id", runID),
		logging.String("session_id", sessionID),
		logging.String("window", req.Start.String()+"-"+req.End.String()))
	return reply, runID, nil
}

// Cancel discards the named session's collected state. In-flight runs are
// unaffected.
func (d *Daemon) Cancel(sessionID string) bool {
	return d.sessions.Cancel(sessionID)
}

// LogPath returns the daemon log file location.
func (d *Daemon) LogPath() string {
	return filepath.Join(d.cfg.Paths.LogDir, "clipperd.log")
}

// Run returns the registry row for one run.
func (d *Daemon) Run(ctx context.Context, id string) (runs.Run, error) {
	return d.store.Get(ctx, id)
}

// ConsumeRun removes a finished run after its result has been picked up.
func (d *Daemon) ConsumeRun(ctx context.Context, id string) error {
	return d.store.Remove(ctx, id)
}

// Status reports runtime information including every registered run.
func (d *Daemon) Status(ctx context.Context) Status {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	status := Status{
		Running:      running,
		PID:          os.Getpid(),
		RegistryPath: d.cfg.RegistryPath(),
		LockFilePath: d.lockPath,
		SocketPath:   d.cfg.SocketPath(),
		LogPath:      d.LogPath(),
		Dependencies: deps.Check(d.cfg),
	}
	listed, err := d.store.List(ctx)
	if err != nil {
		d.logger.Warn("failed to list runs for status", logging.Error(err))
		return status
	}
	status.Runs = listed
	return status
}
