package pitch

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy bounds retries around a remote call. The policy is applied
// explicitly by composition at each call site rather than baked into the
// providers, so providers stay single-shot.
type RetryPolicy struct {
	// MaxAttempts is the total attempt budget (first try included).
	MaxAttempts int

	// BaseDelay is the backoff starting point. The wait after failed
	// attempt i (zero-based) is BaseDelay * 2^i.
	BaseDelay time.Duration
}

// DefaultRetryPolicy returns the standard gateway policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Do runs fn up to MaxAttempts times with exponential backoff between
// attempts. Auth errors abort immediately; other errors are retried until
// the budget is exhausted, then the last error is returned. The wait is
// context-aware.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		if IsAuth(err) {
			return err
		}

		lastErr = err
		if logger != nil {
			logger.Warn("attempt failed",
				"attempt", attempt+1,
				"max_attempts", p.MaxAttempts,
				"error", err,
			)
		}

		if ctx.Err() != nil {
			return lastErr
		}
	}

	return lastErr
}
