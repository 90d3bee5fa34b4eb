package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler repeats a full experiment run at a fixed interval (watch mode).
type Scheduler struct {
	scheduler gocron.Scheduler
	runner    *Runner
	running   bool
}

// NewScheduler creates a scheduler around an existing runner.
func NewScheduler(r *Runner) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{scheduler: scheduler, runner: r}, nil
}

// Start schedules a run every interval and kicks off an initial run
// immediately. Individual run failures are logged, never fatal.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) error {
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			s.runOnce(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create experiment job: %w", err)
	}

	s.scheduler.Start()
	s.running = true

	go s.runOnce(ctx)
	return nil
}

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error {
	if !s.running {
		return fmt.Errorf("scheduler is not running")
	}
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.running = false
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	stats, err := s.runner.Run(ctx)
	if err != nil {
		log.Printf("Experiment run failed: %v", err)
		return
	}
	log.Printf("Experiment completed in %s: %d pinged (%d failed), %d/%d traces succeeded",
		stats.Duration.Round(time.Second),
		stats.PingSuccess+stats.PingFailed, stats.PingFailed,
		stats.TraceSuccess, stats.TraceTargets)
}
