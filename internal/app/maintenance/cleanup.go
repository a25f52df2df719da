package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/agentauth/pkg/logger"
	"github.com/charlesng35/agentauth/pkg/metrics"
)

// DefaultSessionPurgeSchedule runs the expired session sweep once a day.
const DefaultSessionPurgeSchedule = "@daily"

// Task removes stale rows and reports how many were deleted.
type Task func(ctx context.Context) (int64, error)

// SessionPurger is satisfied by auth.SessionStore.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type job struct {
	name     string
	schedule string
	run      Task
}

// Cleaner schedules maintenance tasks with cron. Nothing runs until a task is
// registered and Start is called.
type Cleaner struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    []job
	log     *zap.Logger
	started bool
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

func NewCleaner(opts ...Option) *Cleaner {
	cleaner := &Cleaner{log: logger.WithModule("maintenance")}
	for _, opt := range opts {
		opt(cleaner)
	}
	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// AddTask registers a named task. schedule uses standard cron syntax or descriptors.
func (c *Cleaner) AddTask(name, schedule string, task Task) error {
	if task == nil {
		return errors.New("maintenance: task is required")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("maintenance: %s schedule %q: %w", name, schedule, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("maintenance: cannot add tasks after start")
	}
	c.jobs = append(c.jobs, job{name: name, schedule: schedule, run: task})
	return nil
}

// AddSessionPurge registers the expired session sweep.
func (c *Cleaner) AddSessionPurge(sessions SessionPurger, schedule string) error {
	if sessions == nil {
		return errors.New("maintenance: session purger is required")
	}
	if schedule == "" {
		schedule = DefaultSessionPurgeSchedule
	}
	return c.AddTask("session_purge", schedule, func(ctx context.Context) (int64, error) {
		removed, err := sessions.PurgeExpired(ctx)
		if err == nil && removed > 0 {
			metrics.ExpiredSessionsPurged.Add(float64(removed))
		}
		return removed, err
	})
}

// Enabled reports whether any task is registered.
func (c *Cleaner) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jobs) > 0
}

// Start registers every task with the scheduler and launches it. It is a
// no-op when no task is registered.
func (c *Cleaner) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.jobs) == 0 || c.started {
		return nil
	}

	for _, j := range c.jobs {
		j := j
		if _, err := c.cron.AddFunc(j.schedule, func() {
			c.execute(context.Background(), j)
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	c.started = true
	c.log.Info("maintenance scheduler started", zap.Int("tasks", len(c.jobs)))
	return nil
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (c *Cleaner) Stop() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	c.started = false
	return c.cron.Stop()
}

// RunOnce executes every registered task sequentially and aggregates failures.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	jobs := append([]job(nil), c.jobs...)
	c.mu.Unlock()

	var errs error
	for _, j := range jobs {
		if err := c.execute(ctx, j); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", j.name, err))
		}
	}
	return errs
}

func (c *Cleaner) execute(ctx context.Context, j job) error {
	removed, err := j.run(ctx)
	if err != nil {
		c.log.Warn("maintenance task failed", zap.String("task", j.name), zap.Error(err))
		return err
	}
	c.log.Info("maintenance task finished", zap.String("task", j.name), zap.Int64("removed", removed))
	return nil
}
