package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

// ScheduleDescription is the human-readable cadence reported in status.
const ScheduleDescription = "weekly (Monday 02:00 UTC)"

// PipelineRunner triggers one pipeline run.
type PipelineRunner interface {
	RunPipeline(ctx context.Context, triggerType string) (*entities.UpdateSession, error)
}

// UpdateScheduler fires the update pipeline on a weekly cadence, Monday
// 02:00 UTC. The clock and timer are injectable so tests can drive ticks
// without waiting.
type UpdateScheduler struct {
	runner PipelineRunner
	now    func() time.Time
	after  func(d time.Duration) <-chan time.Time
}

// NewUpdateScheduler creates a new update scheduler
func NewUpdateScheduler(runner PipelineRunner) *UpdateScheduler {
	return &UpdateScheduler{
		runner: runner,
		now:    time.Now,
		after:  time.After,
	}
}

// NewUpdateSchedulerWithClock creates a scheduler with injectable time
// functions for tests.
func NewUpdateSchedulerWithClock(runner PipelineRunner, now func() time.Time, after func(d time.Duration) <-chan time.Time) *UpdateScheduler {
	return &UpdateScheduler{
		runner: runner,
		now:    now,
		after:  after,
	}
}

// NextRun returns the first Monday 02:00 UTC strictly after the given time.
func (s *UpdateScheduler) NextRun(after time.Time) time.Time {
	t := after.UTC()
	next := time.Date(t.Year(), t.Month(), t.Day(), 2, 0, 0, 0, time.UTC)

	daysAhead := (int(time.Monday) - int(next.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, daysAhead)
	if !next.After(t) {
		next = next.AddDate(0, 0, 7)
	}

	return next
}

// Start runs the scheduling loop until ctx is cancelled. A tick that lands
// while a run is still active logs the conflict and waits for the next slot.
func (s *UpdateScheduler) Start(ctx context.Context) {
	log.Info().Str("schedule", ScheduleDescription).Msg("update scheduler started")

	for {
		next := s.NextRun(s.now())
		wait := next.Sub(s.now())
		log.Info().Time("next_run", next).Msg("next scheduled update")

		select {
		case <-ctx.Done():
			log.Info().Msg("update scheduler stopped")
			return
		case <-s.after(wait):
		}

		if _, err := s.runner.RunPipeline(ctx, entities.TriggerScheduled); err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
				log.Warn().Msg("scheduled update skipped, run already in progress")
				continue
			}
			log.Error().Err(err).Msg("scheduled update failed")
		}
	}
}
