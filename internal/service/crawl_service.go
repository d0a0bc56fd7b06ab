package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/repository"
	"github.com/campus-notice-collector/internal/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrCrawlInProgress is returned when a crawl is requested while one runs
var ErrCrawlInProgress = errors.New("crawl already in progress")

// CrawlProducer is a producer that tracks per-run crawl counters
type CrawlProducer interface {
	Producer
	Counters() (rowsSeen, detailFailures int)
}

// CrawlService runs full refreshes of the web store
type CrawlService interface {
	RunOnce(ctx context.Context) (*models.CrawlRun, error)
}

// crawlService is the concrete implementation of CrawlService
type crawlService struct {
	producer CrawlProducer
	repos    *repository.Repositories
	policy   retry.Policy
	log      zerolog.Logger
	mu       sync.Mutex
	running  bool
}

// NewCrawlService creates a crawl service writing into the web store repos
func NewCrawlService(producer CrawlProducer, repos *repository.Repositories, policy retry.Policy, log zerolog.Logger) CrawlService {
	return &crawlService{
		producer: producer,
		repos:    repos,
		policy:   policy,
		log:      log.With().Str("service", "crawl").Logger(),
	}
}

// RunOnce crawls every page, replaces the web store contents and records
// the run. Overlapping calls fail with ErrCrawlInProgress.
func (s *crawlService) RunOnce(ctx context.Context) (*models.CrawlRun, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrCrawlInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	run := &models.CrawlRun{
		ID:        uuid.New().String(),
		Status:    models.CrawlStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.repos.CrawlRuns.Create(ctx, run); err != nil {
		// History is best effort; the crawl itself still runs.
		s.log.Warn().Err(err).Msg("Failed to record crawl run")
	}

	log := s.log.With().Str("run_id", run.ID).Logger()
	log.Info().Msg("Crawl started")

	persister := NewReplacePersister(s.repos.Records, s.policy, log)
	_, runErr := Run(ctx, s.producer, persister, log)

	completed := time.Now().UTC()
	run.RowsSeen, run.DetailFailures = s.producer.Counters()
	run.RowsStored = persister.Stored()
	run.DurationMs = completed.Sub(run.StartedAt).Milliseconds()
	run.CompletedAt = &completed
	run.Status = models.CrawlStatusCompleted
	if runErr != nil {
		run.Status = models.CrawlStatusFailed
		run.Error = runErr.Error()
	}

	// The run context may already be cancelled; history still gets written.
	updateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repos.CrawlRuns.Update(updateCtx, run); err != nil {
		log.Warn().Err(err).Msg("Failed to update crawl run")
	}

	log.Info().
		Str("status", string(run.Status)).
		Int("rows_seen", run.RowsSeen).
		Int("rows_stored", run.RowsStored).
		Int("detail_failures", run.DetailFailures).
		Int64("duration_ms", run.DurationMs).
		Msg("Crawl finished")

	return run, runErr
}
