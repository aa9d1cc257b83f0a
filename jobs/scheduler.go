// Package jobs runs periodic maintenance work on cron schedules.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Parser accepts standard five-field expressions, an optional seconds field and
// descriptors such as "@hourly".
var Parser = cron.NewParser(
	cron.SecondOptional |
		cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow |
		cron.Descriptor,
)

type Scheduler struct {
	cron       *cron.Cron
	logger     zerolog.Logger
	jobTimeout time.Duration

	mu      sync.Mutex
	started bool
}

func NewScheduler(jobTimeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithParser(Parser)),
		logger:     log.With().Str("component", "scheduler").Logger(),
		jobTimeout: jobTimeout,
	}
}

// Add registers job under name. Failures are logged and never stop the schedule.
func (s *Scheduler) Add(ctx context.Context, name, expression string, job Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	if _, err := Parser.Parse(expression); err != nil {
		return fmt.Errorf("invalid cron expression for %s: %w", name, err)
	}

	_, err := s.cron.AddFunc(expression, func() {
		if err := s.Run(ctx, name, job); err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}

	s.logger.Info().Str("job", name).Str("schedule", expression).Msg("Job scheduled")
	return nil
}

// Run executes job once with the scheduler's timeout.
func (s *Scheduler) Run(ctx context.Context, name string, job Job) error {
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := job(ctx)
	s.logger.Debug().Str("job", name).Dur("duration", time.Since(start)).Msg("Job finished")
	return err
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
}

// Stop halts the schedule and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	done := s.cron.Stop()
	s.started = false
	s.mu.Unlock()

	<-done.Done()
}
