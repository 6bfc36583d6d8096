package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"ytscribe/internal/config"
	"ytscribe/internal/logging"
)

// ErrAlreadyRunning is returned when another ytscribe instance holds the lock.
var ErrAlreadyRunning = errors.New("another ytscribe instance is already running")

// Runner is the long-running component the daemon supervises.
type Runner interface {
	Run(ctx context.Context) error
	Wait()
}

// Daemon enforces single-instance execution around the bot's polling loop.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	runner Runner

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	HistoryDBPath string
	LockFilePath  string
}

// New constructs a daemon for the given runner.
func New(cfg *config.Config, logger *slog.Logger, runner Runner) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		runner:   runner,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Run acquires the instance lock and blocks in the runner until ctx is
// cancelled. In-flight requests finish before the lock is released.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release instance lock",
				logging.Error(err),
				logging.String(logging.FieldEventType, "lock_release_failed"),
				logging.String(logging.FieldErrorHint, "remove the lock file if no ytscribe process is running"),
			)
		}
	}()

	d.logger.Info("ytscribe started", logging.String("lock", d.lockPath))
	runErr := d.runner.Run(ctx)
	d.runner.Wait()
	d.logger.Info("ytscribe stopped")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		HistoryDBPath: d.cfg.HistoryPath(),
		LockFilePath:  d.lockPath,
	}
}

// InstanceRunning reports whether some process currently holds the lock at path.
func InstanceRunning(path string) (bool, error) {
	probe := flock.New(path)
	ok, err := probe.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe lock: %w", err)
	}
	if !ok {
		return true, nil
	}
	return false, probe.Unlock()
}
