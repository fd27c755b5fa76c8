package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"ChannelSync/internal/ports"
)

const retryDelay = 30 * time.Second

// CronScheduler fires a job on every tick of a cron expression.
type CronScheduler struct {
	spec       string
	loc        *time.Location
	runOnStart bool
	logger     *slog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for spec evaluated in loc.
func NewCronScheduler(spec string, loc *time.Location, runOnStart bool, logger *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CronScheduler{
		spec:       spec,
		loc:        loc,
		runOnStart: runOnStart,
		logger:     logger,
		now:        time.Now,
		after:      time.After,
	}
}

// Start launches the tick loop. Each job runs on its own goroutine.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if !gronx.IsValid(c.spec) {
		return fmt.Errorf("invalid cron expression %q", c.spec)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return nil
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go c.loop(ctx, job, c.stop, c.done)
	return nil
}

func (c *CronScheduler) loop(ctx context.Context, job func(time.Time), stop, done chan struct{}) {
	defer close(done)

	if c.runOnStart {
		go job(c.now())
	}

	for {
		now := c.now().In(c.loc)
		next, err := gronx.NextTickAfter(c.spec, now, false)
		if err != nil {
			c.logger.Error("next tick failed", "cron", c.spec, "error", err)
			select {
			case <-c.after(retryDelay):
				continue
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}

		c.logger.Debug("next tick scheduled", "cron", c.spec, "at", next)
		select {
		case <-c.after(next.Sub(now)):
			go job(next)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

// Stop halts the tick loop and waits for it to exit. Running jobs are not interrupted.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
