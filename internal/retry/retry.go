// Package retry runs an operation under a bounded attempt policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is wrapped into the error returned when every attempt failed
// with a retryable error.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy bounds how an operation is retried
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	// Retryable decides whether an error warrants another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool
}

// Do runs op until it succeeds, fails with a non-retryable error, the
// attempts run out or ctx is cancelled. It returns the number of attempts
// made. A non-retryable error is returned unchanged.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return attempt, nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return attempt, lastErr
		}
		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(p.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}

	return maxAttempts, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, maxAttempts, lastErr)
}
