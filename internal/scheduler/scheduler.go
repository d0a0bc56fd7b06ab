// Package scheduler runs periodic jobs on cron specs. A job whose
// previous run is still going is skipped rather than queued.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a scheduled unit of work. ctx is cancelled when the scheduler
// stops.
type Job func(ctx context.Context)

// Scheduler wraps a cron runner
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. Specs use the standard five fields or
// descriptors such as @every 6h.
func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	logger := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under spec
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()

		s.log.Info().Str("job", name).Msg("Job started")
		job(ctx)
		s.log.Info().Str("job", name).Msg("Job finished")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s (%q): %w", name, spec, err)
	}
	return nil
}

// Start runs the scheduler in the background. Jobs see a context derived
// from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.cron.Start()
}

// Stop stops scheduling, cancels running jobs and waits for them to
// return or for ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zerolog to cron's logger interface
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
