package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ChannelSync/internal/ports"
)

// Scheduler wires the cron-like driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	opts     RunOptions
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewScheduler returns a helper to start/stop recurring incremental passes.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, opts RunOptions, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, opts: opts, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.runOnce(ctx, trigger)
	})
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

// runOnce skips a tick while the previous pass is still running.
func (s *Scheduler) runOnce(ctx context.Context, trigger time.Time) {
	if !s.mu.TryLock() {
		s.logger.Warn("previous pass still running, skipping tick", "trigger", trigger)
		return
	}
	defer s.mu.Unlock()

	if _, err := s.pipeline.Run(ctx, s.opts); err != nil {
		s.logger.Error("scheduled pass failed", "trigger", trigger, "error", err)
	}
}
