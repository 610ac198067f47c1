package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	Linear          bool
	MaxTotalTimeout time.Duration
}

// DefaultConfig returns a default retry configuration with exponential
// backoff and a 1 minute max timeout
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 60 * time.Second, // 1 minute max
	}
}

// LinearConfig returns a retry configuration with linearly increasing
// backoff: baseDelay after the first failure, 2×baseDelay after the second,
// and so on. Used for upstream APIs that expect polite, bounded retries.
func LinearConfig(maxAttempts int, baseDelay time.Duration) Config {
	return Config{
		MaxAttempts:  maxAttempts,
		InitialDelay: baseDelay,
		Linear:       true,
	}
}

// nextDelay computes the delay before the next attempt. attempt is the
// 1-based number of the attempt that just failed.
func (cfg Config) nextDelay(attempt int) time.Duration {
	var delay time.Duration
	if cfg.Linear {
		delay = cfg.InitialDelay * time.Duration(attempt)
	} else {
		delay = cfg.InitialDelay
		for i := 1; i < attempt; i++ {
			delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		}
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// Do executes the given function with retry and backoff
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return DoWithLog(ctx, cfg, "", fn, nil)
}

// DoWithLog executes the function with retry and logs each failed attempt.
// On exhaustion the last error is always surfaced to the caller.
func DoWithLog(ctx context.Context, cfg Config, serviceName string, fn func() error, logFn func(attempt int, err error, nextDelay time.Duration)) error {
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}

	prefix := ""
	if serviceName != "" {
		prefix = serviceName + ": "
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("%sretry aborted after %d attempts: %w (last error: %v)", prefix, attempt-1, ctx.Err(), lastErr)
			}
			return fmt.Errorf("%sretry aborted: %w", prefix, ctx.Err())
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == cfg.MaxAttempts {
			return fmt.Errorf("%smax retry attempts (%d) exceeded: %w", prefix, cfg.MaxAttempts, lastErr)
		}

		delay := cfg.nextDelay(attempt)
		if logFn != nil {
			logFn(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%sretry aborted after %d attempts: %w (last error: %v)", prefix, attempt, ctx.Err(), lastErr)
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%smax retry attempts exceeded: %w", prefix, lastErr)
}
