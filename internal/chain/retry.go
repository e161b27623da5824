package chain

import (
	"context"
	"fmt"
	"time"

	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// Default retry settings for every RPC call made by the dispatcher.
const (
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 5 * time.Second
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Maximum number of attempts (including initial)
	Delay       time.Duration // Fixed pause between failed attempts

	// OnRetry is called after a failed attempt that will be retried.
	// attempt is 1-based.
	OnRetry func(attempt, maxAttempts int, err error)
}

// DefaultRetryConfig returns the default retry configuration.
// 5 attempts total with a fixed 5s pause.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultRetryDelay,
	}
}

// WithOnRetry returns a copy of the config with the retry hook set.
func (c RetryConfig) WithOnRetry(fn func(attempt, maxAttempts int, err error)) RetryConfig {
	c.OnRetry = fn
	return c
}

// Retry runs operation up to cfg.MaxAttempts times, pausing cfg.Delay
// between failed attempts. The first success is returned. When every
// attempt fails the returned error matches both ErrRetryExhausted and the
// last attempt's error. A canceled context stops the loop with ctx.Err().
func Retry[T any](ctx context.Context, cfg RetryConfig, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	var err error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}

		result, err = operation(ctx)
		if err == nil {
			return result, nil
		}

		// Don't delay after the last attempt
		if attempt == attempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, attempts, err)
		}

		if sleepErr := Sleep(ctx, cfg.Delay); sleepErr != nil {
			return result, sleepErr
		}
	}

	return result, fmt.Errorf("%w: %w", trerr.ErrRetryExhausted, err)
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
