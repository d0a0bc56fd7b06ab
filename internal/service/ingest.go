package service

import (
	"context"
	"fmt"

	"github.com/campus-notice-collector/internal/models"
	"github.com/rs/zerolog"
)

// EmitFunc hands one classified record to the persistence side
type EmitFunc func(ctx context.Context, c models.Classified) error

// Producer is an ingestion source: the chat listener or the portal crawl.
// Produce blocks until the source is exhausted or ctx is done.
type Producer interface {
	Name() string
	Produce(ctx context.Context, emit EmitFunc) error
}

// Persister stores what a producer emits. Flush is called once after the
// producer finished without error.
type Persister interface {
	Persist(ctx context.Context, c models.Classified) error
	Flush(ctx context.Context) error
}

// RunStats summarizes one Run
type RunStats struct {
	Emitted int
}

// Run drives producer into persister. A producer error skips the flush so
// a partial crawl never replaces stored data.
func Run(ctx context.Context, producer Producer, persister Persister, log zerolog.Logger) (RunStats, error) {
	log = log.With().Str("producer", producer.Name()).Logger()
	var stats RunStats

	err := producer.Produce(ctx, func(ctx context.Context, c models.Classified) error {
		stats.Emitted++
		return persister.Persist(ctx, c)
	})
	if err != nil {
		log.Error().Err(err).Int("emitted", stats.Emitted).Msg("Producer stopped with error")
		return stats, fmt.Errorf("%s: %w", producer.Name(), err)
	}

	if err := persister.Flush(ctx); err != nil {
		return stats, fmt.Errorf("%s flush: %w", producer.Name(), err)
	}

	log.Info().Int("emitted", stats.Emitted).Msg("Producer finished")
	return stats, nil
}
