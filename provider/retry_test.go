package provider

import (
	"context"
	"errors"
	"testing"

	"hublocator/config"
	"hublocator/hublerr"
)

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	cfg := config.RetryConfig{MaxAttempts: 5, BaseDelayMS: 1, MaxDelayMS: 5, JitterFactor: 0}
	attempts := 0
	err := withRetry(context.Background(), cfg, "test.op", func() error {
		attempts++
		if attempts < 3 {
			return hublerr.New(hublerr.Transport, "test.op", errors.New("boom"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	cfg := config.RetryConfig{MaxAttempts: 3, BaseDelayMS: 1, MaxDelayMS: 5, JitterFactor: 0}
	attempts := 0
	err := withRetry(context.Background(), cfg, "test.op", func() error {
		attempts++
		return hublerr.New(hublerr.Transport, "test.op", errors.New("boom"))
	})
	if err == nil {
		t.Fatalf("expected failure after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", attempts)
	}
}

func TestWithRetryDoesNotRetryNonRetryableErrors(t *testing.T) {
	cfg := config.RetryConfig{MaxAttempts: 5, BaseDelayMS: 1, MaxDelayMS: 5, JitterFactor: 0}
	attempts := 0
	err := withRetry(context.Background(), cfg, "test.op", func() error {
		attempts++
		return hublerr.New(hublerr.Auth, "test.op", errors.New("rejected"))
	})
	if err == nil {
		t.Fatalf("expected failure")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt for a non-retryable error, got %d", attempts)
	}
}
