// Package scheduler runs the periodic jobs that keep the arena moving:
// match formation, stale-match reminders, and state snapshots.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"octane-arena/internal/config"
	"octane-arena/internal/constants"
	"octane-arena/internal/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

type Scheduler struct {
	inner  gocron.Scheduler
	logger zerolog.Logger
}

// New wires the three periodic jobs. Jobs never overlap with themselves:
// a tick still running when the next fires wins, and the late one is
// rescheduled.
func New(cfg *config.Config, svc *service.Matchmaking, logger zerolog.Logger) (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{inner: inner, logger: logger}

	jobs := []struct {
		name     string
		interval time.Duration
		run      func(context.Context)
	}{
		{
			name:     "form-matches",
			interval: cfg.FormationInterval,
			run: func(ctx context.Context) {
				if n := svc.FormMatches(ctx); n > 0 {
					logger.Debug().Int("formed", n).Msg("formation tick")
				}
			},
		},
		{
			name:     "remind-stale-matches",
			interval: cfg.ReminderInterval,
			run: func(ctx context.Context) {
				if n := svc.RemindStaleMatches(ctx); n > 0 {
					logger.Info().Int("reminded", n).Msg("reminder tick")
				}
			},
		},
		{
			name:     "snapshot-state",
			interval: cfg.SnapshotInterval,
			run: func(ctx context.Context) {
				if err := svc.SaveState(ctx); err != nil {
					logger.Error().Err(err).Msg("periodic snapshot failed")
				}
			},
		},
	}

	for _, job := range jobs {
		_, err := inner.NewJob(
			gocron.DurationJob(job.interval),
			gocron.NewTask(func() {
				s.tick(job.name, job.run)
			}),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, fmt.Errorf("register job %s: %w", job.name, err)
		}
	}

	return s, nil
}

// tick bounds each run and keeps a panicking job from taking the process
// down with it.
func (s *Scheduler) tick(name string, run func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("job", name).Msg("job panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), constants.TickTimeout)
	defer cancel()
	run(ctx)
}

func (s *Scheduler) Start() {
	s.inner.Start()
	s.logger.Info().Msg("scheduler started")
}

func (s *Scheduler) Shutdown() error {
	if err := s.inner.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	s.logger.Info().Msg("scheduler stopped")
	return nil
}
