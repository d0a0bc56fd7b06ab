package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/repository"
	"github.com/campus-notice-collector/internal/retry"
	"github.com/rs/zerolog"
)

// ReplacePersister buffers a full crawl and swaps each category's
// contents on Flush. Every category is replaced, so one missing from the
// crawl ends up empty.
type ReplacePersister struct {
	repo    repository.RecordRepository
	policy  retry.Policy
	log     zerolog.Logger
	buffers map[models.Category][]*models.Record
	stored  int
}

// NewReplacePersister creates a full-refresh persister over one store
func NewReplacePersister(repo repository.RecordRepository, policy retry.Policy, log zerolog.Logger) *ReplacePersister {
	return &ReplacePersister{
		repo:    repo,
		policy:  policy,
		log:     log.With().Str("service", "replace").Logger(),
		buffers: make(map[models.Category][]*models.Record),
	}
}

// Persist implements Persister
func (p *ReplacePersister) Persist(ctx context.Context, c models.Classified) error {
	for _, category := range c.Categories {
		rec := c.Record
		p.buffers[category] = append(p.buffers[category], &rec)
	}
	return ctx.Err()
}

// Flush implements Persister
func (p *ReplacePersister) Flush(ctx context.Context) error {
	var errs []error
	p.stored = 0

	for _, category := range models.Categories {
		recs := p.buffers[category]
		_, err := retry.Do(ctx, p.policy, func(ctx context.Context) error {
			return p.repo.Replace(ctx, category, recs)
		})
		if err != nil {
			p.log.Error().Err(err).Str("category", string(category)).Msg("Failed to replace category")
			errs = append(errs, fmt.Errorf("%s: %w", category, err))
			continue
		}
		p.stored += len(recs)
		p.log.Info().Str("category", string(category)).Int("rows", len(recs)).Msg("Category replaced")
	}

	p.buffers = make(map[models.Category][]*models.Record)
	return errors.Join(errs...)
}

// Stored returns how many rows the last Flush wrote
func (p *ReplacePersister) Stored() int {
	return p.stored
}
