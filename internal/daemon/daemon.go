package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"tally/internal/activity"
	"tally/internal/config"
	"tally/internal/logging"
	"tally/internal/protocol"
	"tally/internal/server"
	"tally/internal/service"
	"tally/internal/store"
	"tally/internal/track"
	"tally/internal/wsbridge"
)

// Daemon owns the long-running tracking stack.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store

	svc     *service.Service
	srv     *server.Server
	ws      *wsbridge.Server
	monitor *activity.Monitor

	lockPath string
	lock     *flock.Flock
	running  atomic.Bool
}

// Status is a point-in-time snapshot of the daemon.
type Status struct {
	Running      bool
	Addr         string
	Clients      int
	DatabasePath string
	LockFilePath string
}

// New constructs a daemon around an open store. Start does the rest.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "tallyd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, binds the websocket listener, and
// begins serving. A second Start while running is an error.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tally daemon instance is already running")
	}

	ws, err := wsbridge.NewServer(d.cfg.Server.Bind, d.attach, d.logger)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("bind listener: %w", err)
	}

	d.ws = ws
	d.svc = service.New(d.cfg, d.store, ws, d.logger)
	d.srv = server.New(d.svc, time.Duration(d.cfg.Server.RequestTimeoutSeconds)*time.Second, d.logger)
	d.monitor = activity.NewMonitor(activity.Options{
		FlushEvery: time.Duration(d.cfg.Tracking.ActivityFlushSeconds) * time.Second,
		IdleAfter:  time.Duration(d.cfg.Tracking.IdleTimeoutSeconds) * time.Second,
		OnIdle:     d.handleIdle,
		Logger:     d.logger,
	})

	d.pruneExpired(ctx)

	d.monitor.Start()
	ws.Serve()
	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("addr", ws.Addr()),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts the stack down and releases the lock. Safe to call twice.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.monitor.Close()
	d.ws.Close()
	d.svc.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Addr reports the bound listener address, empty before Start.
func (d *Daemon) Addr() string {
	if d.ws == nil {
		return ""
	}
	return d.ws.Addr()
}

// Status snapshots the daemon's runtime state.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
	if d.ws != nil {
		status.Addr = d.ws.Addr()
		status.Clients = d.ws.ClientCount()
	}
	return status
}

// Health runs the store health check.
func (d *Daemon) Health(ctx context.Context) (store.DatabaseHealth, error) {
	return d.store.CheckHealth(ctx)
}

// attach connects a new client bridge: the request server answers its
// requests, and every inbound request also counts as editor activity for
// idle detection.
func (d *Daemon) attach(bridge protocol.Bridge) (func(), error) {
	detachServer, err := d.srv.Attach(bridge)
	if err != nil {
		return nil, err
	}
	detachTap, err := bridge.OnMessage(func(msg *protocol.Message) {
		if msg != nil && msg.Kind() == protocol.KindRequest {
			d.monitor.Record(activity.KindExtensionActivity)
		}
	})
	if err != nil {
		detachServer()
		return nil, err
	}
	return func() {
		detachTap()
		detachServer()
	}, nil
}

// handleIdle interrupts the active session's flow: the client is told via
// idleDetected and the session gains an interruption.
func (d *Daemon) handleIdle(idleFor time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := d.svc.SessionStatus(ctx, track.SessionStatusPayload{})
	if err != nil {
		if !errors.Is(err, track.ErrNotFound) {
			d.logger.Warn("idle lookup failed", logging.Error(err))
		}
		return
	}

	d.ws.Publish(protocol.TypeIdleDetected, track.IdleDetected{
		SessionID: status.Session.ID,
		IdleTime:  idleFor.Milliseconds(),
	})
	if err := d.svc.RecordInterruption(ctx, status.Session.ID); err != nil {
		d.logger.Warn("record interruption", logging.Error(err))
	}
}

// pruneExpired applies the retention policy to finished sessions.
func (d *Daemon) pruneExpired(ctx context.Context) {
	days := d.cfg.Tracking.DataRetentionDays
	if days <= 0 {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	pruned, err := d.store.PruneBefore(ctx, cutoff)
	if err != nil {
		d.logger.Warn("retention prune failed", logging.Error(err))
		return
	}
	if pruned > 0 {
		d.logger.Info("retention prune",
			logging.Int64("rows", pruned),
			logging.String("cutoff", cutoff))
	}
}
