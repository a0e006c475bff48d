package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/gatherly/gatherly/internal/auth"
	"github.com/gatherly/gatherly/internal/store"
	"github.com/gatherly/gatherly/pkg/logger"
	"github.com/gatherly/gatherly/pkg/metrics"
)

const defaultSessionSpec = "@hourly"

// Cleaner runs the periodic session sweep: expired and invalidated sessions
// are deleted and the active-session gauge is resynced from storage.
type Cleaner struct {
	sessions *iauth.SessionService
	store    *store.Store
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger

	sessionSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil session
// service disables the sweep.
func NewCleaner(sessions *iauth.SessionService, st *store.Store, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:        sessions,
		store:           st,
		now:             time.Now,
		sessionSchedule: defaultSessionSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the cleanup job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.sessions == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("session cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the cleanup routines sequentially. Also used during
// graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		removed, err := c.sessions.CleanupExpired(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("removed stale sessions", zap.Int64("count", removed))
		}
	}

	if c.store != nil {
		count, err := c.store.Sessions.CountActive(ctx, c.now())
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			// The gauge drifts across restarts; storage is the truth.
			metrics.ActiveSessions.Set(float64(count))
		}
	}

	return errs
}
