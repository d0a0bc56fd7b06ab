package service

import (
	"context"
	"errors"
	"time"

	"github.com/campus-notice-collector/internal/database"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/repository"
	"github.com/campus-notice-collector/internal/retry"
	"github.com/rs/zerolog"
)

// WritePolicy builds the bounded retry policy used for store writes
func WritePolicy(attempts int, backoff time.Duration) retry.Policy {
	return retry.Policy{
		MaxAttempts: attempts,
		Backoff:     backoff,
		Retryable:   database.IsLocked,
	}
}

// WriteResult counts what happened to one record across its categories
type WriteResult struct {
	Stored     int
	Duplicates int
	Failed     int
}

// RecordWriter fans a record out to its categories, skipping categories
// that already hold the same content and event date. It is the persister
// of the incremental chat path.
type RecordWriter struct {
	repo   repository.RecordRepository
	policy retry.Policy
	log    zerolog.Logger
}

// NewRecordWriter creates a writer over one store
func NewRecordWriter(repo repository.RecordRepository, policy retry.Policy, log zerolog.Logger) *RecordWriter {
	return &RecordWriter{
		repo:   repo,
		policy: policy,
		log:    log.With().Str("service", "writer").Logger(),
	}
}

// Write stores rec once per category. Each category write is retried on
// lock contention; exhausting the retries loses that category's copy only.
// Any other storage error abandons the remaining categories.
func (w *RecordWriter) Write(ctx context.Context, rec models.Record, categories []models.Category) WriteResult {
	var result WriteResult

	for i, category := range categories {
		var inserted bool
		attempts, err := retry.Do(ctx, w.policy, func(ctx context.Context) error {
			var err error
			inserted, err = w.repo.InsertIfAbsent(ctx, category, &rec)
			return err
		})

		switch {
		case err == nil && inserted:
			result.Stored++
		case err == nil:
			result.Duplicates++
			w.log.Debug().Str("category", string(category)).Str("title", rec.Title).Msg("Duplicate record skipped")
		case errors.Is(err, retry.ErrExhausted):
			result.Failed++
			w.log.Error().Err(err).
				Str("category", string(category)).
				Int("attempts", attempts).
				Str("title", rec.Title).
				Msg("Store stayed locked, record lost")
		default:
			result.Failed += len(categories) - i
			w.log.Error().Err(err).
				Str("category", string(category)).
				Str("title", rec.Title).
				Msg("Failed to store record")
			return result
		}
	}

	if result.Stored > 0 {
		w.log.Info().
			Str("title", rec.Title).
			Int("stored", result.Stored).
			Int("duplicates", result.Duplicates).
			Msg("Record stored")
	}
	return result
}

// Persist implements Persister. Storage failures are logged by Write and
// never stop the producer.
func (w *RecordWriter) Persist(ctx context.Context, c models.Classified) error {
	w.Write(ctx, c.Record, c.Categories)
	return ctx.Err()
}

// Flush implements Persister; incremental writes have nothing buffered.
func (w *RecordWriter) Flush(ctx context.Context) error {
	return nil
}
