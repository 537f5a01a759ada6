// Package retry runs an operation against an unreliable dependency with
// exponential backoff. Rate-limited and transient dependency failures are
// retried; validation, not-found and auth failures surface immediately.
package retry

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/obs"
)

type Options struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64

	// Retryable overrides the default classification (apperr.Retryable).
	Retryable func(error) bool
}

func defaults(opts Options) Options {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 250 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 5 * time.Second
	}
	if opts.BackoffMultiplier <= 0 {
		opts.BackoffMultiplier = 2
	}
	if opts.Retryable == nil {
		opts.Retryable = apperr.Retryable
	}
	return opts
}

// Do invokes fn until it succeeds, the attempt budget is exhausted, or a
// non-retryable error occurs. The last error is returned unchanged so the
// HTTP layer can still map its kind. name only feeds diagnostic logging.
func Do[T any](ctx context.Context, name string, fn func(ctx context.Context) (T, error), opts Options) (T, error) {
	opts = defaults(opts)

	var zero T
	var lastErr error

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		obs.RetryFailures.WithLabelValues(name).Inc()

		if attempt == opts.MaxAttempts || !opts.Retryable(err) {
			log.Printf("[Retry] %s failed permanently (attempt %d/%d): %v", name, attempt, opts.MaxAttempts, err)
			return zero, err
		}

		delay := backoffDelay(opts, attempt)
		// A rate-limited dependency may advertise its own cooldown; trust it
		// over the computed backoff.
		if hint, ok := apperr.RetryAfterHint(err); ok {
			delay = hint
		}

		log.Printf("[Retry] %s failed (attempt %d/%d), retrying in %s: %v", name, attempt, opts.MaxAttempts, delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}

func backoffDelay(opts Options, attempt int) time.Duration {
	delay := time.Duration(float64(opts.InitialDelay) * math.Pow(opts.BackoffMultiplier, float64(attempt-1)))
	if delay > opts.MaxDelay {
		delay = opts.MaxDelay
	}
	return delay
}
