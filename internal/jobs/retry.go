package jobs

import (
	"context"
	"time"
)

// RetryPolicy wraps a single-attempt operation with bounded exponential
// backoff. The delay doubles each attempt, capped at MaxDelay. OnExhausted
// runs exactly once, after the final attempt has failed.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Sleep       func(time.Duration) // nil means time.Sleep
}

// Do runs op until it succeeds, the policy is exhausted, or ctx is done.
// Returns the last error, nil on success.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error, onExhausted func(error)) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	delay := p.BaseDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt < p.MaxAttempts {
			sleep(delay)
			delay *= 2
			if delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}
	}

	if onExhausted != nil {
		onExhausted(lastErr)
	}
	return lastErr
}
