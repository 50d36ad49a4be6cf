package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrMaxRetries is returned once every attempt of WithRetry has failed.
var ErrMaxRetries = errors.New("gave up")

// RetryOptions configures WithRetry. Zero values fall back to three attempts
// starting at 100ms and capped at 5s.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 100 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 5 * time.Second
	}
	return o
}

// backoff returns the wait before the given retry (1-based), doubling each
// time up to max.
func backoff(retry int, initial, maxDelay time.Duration) time.Duration {
	d := initial
	for i := 1; i < retry && d < maxDelay; i++ {
		d *= 2
	}
	return min(d, maxDelay)
}

// WithRetry calls op until it succeeds, returns an error IsRetryable rejects,
// or runs out of attempts. Only the health probe uses it: authenticated
// requests are never replayed because a 401 ends the session.
func WithRetry(ctx context.Context, op func() error, opts RetryOptions) error {
	opts = opts.withDefaults()

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		wait := backoff(attempt, opts.InitialDelay, opts.MaxDelay)
		slog.Debug("Retrying", "attempt", attempt, "wait", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
