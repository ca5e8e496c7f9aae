package provider

import (
	"context"
	"math"
	"math/rand"
	"time"

	"hublocator/config"
	"hublocator/hublerr"
)

// withRetry runs fn, retrying on retryable hublerr.Error failures with
// exponential backoff and jitter, per spec.md §4.1. It gives up after
// cfg.MaxAttempts and returns the last error.
func withRetry(ctx context.Context, cfg config.RetryConfig, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(cfg, attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return hublerr.New(hublerr.Cancelled, op, ctx.Err())
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !hublerr.IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// backoffDelay returns the delay before the given attempt (1-indexed),
// doubling per attempt from BaseDelayMS, capped at MaxDelayMS, with
// +/- JitterFactor multiplicative jitter.
func backoffDelay(cfg config.RetryConfig, attempt int) time.Duration {
	base := float64(cfg.BaseDelayMS) * math.Pow(2, float64(attempt-1))
	if base > float64(cfg.MaxDelayMS) {
		base = float64(cfg.MaxDelayMS)
	}
	if cfg.JitterFactor > 0 {
		jitter := (rand.Float64()*2 - 1) * cfg.JitterFactor
		base = base * (1 + jitter)
	}
	if base < 0 {
		base = 0
	}
	return time.Duration(base) * time.Millisecond
}
