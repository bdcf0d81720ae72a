package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/moneymap/backend/internal/apperr"
)

func testConfig() Config {
	return Config{
		MaxRetries:    3,
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      100 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), testConfig(), func(ctx context.Context) (string, error) {
		attempts++
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != "ok" {
		t.Fatalf("expected 'ok', got %q", result)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDo_TransientThenSuccess(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), testConfig(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", apperr.Upstream("transient", true, nil)
		}
		return "recovered", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != "recovered" {
		t.Fatalf("expected 'recovered', got %q", result)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDo_ExhaustsAllAttempts(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2

	attempts := 0
	_, err := Do(context.Background(), cfg, func(ctx context.Context) (string, error) {
		attempts++
		return "", apperr.Upstream("always failing", true, nil)
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// initial attempt + 2 retries = 3 total
	if attempts != 3 {
		t.Fatalf("expected 3 attempts (1 + 2 retries), got %d", attempts)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), testConfig(), func(ctx context.Context) (string, error) {
		attempts++
		return "", apperr.Invalid("bad input")
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt (non-retryable should stop immediately), got %d", attempts)
	}
	if apperr.CodeOf(err) != apperr.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %s", apperr.CodeOf(err))
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	cfg := Config{
		MaxRetries:    5,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	attempts := 0
	_, err := Do(ctx, cfg, func(ctx context.Context) (string, error) {
		attempts++
		return "", apperr.Upstream("failing", true, nil)
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// Should have been cancelled before exhausting all retries
	if attempts >= 5 {
		t.Fatalf("expected fewer than 5 attempts due to context cancellation, got %d", attempts)
	}
}

func TestDo_PlainErrorIsRetried(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2

	attempts := 0
	_, err := Do(context.Background(), cfg, func(ctx context.Context) (string, error) {
		attempts++
		return "", fmt.Errorf("generic error")
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// Errors without an IsRetryable method are retried
	if attempts != 3 {
		t.Fatalf("expected 3 attempts for generic errors, got %d", attempts)
	}
}

func TestDo_MaxDelayIsCapped(t *testing.T) {
	cfg := Config{
		MaxRetries:    3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      60 * time.Millisecond, // Very low max
		BackoffFactor: 10.0,                  // Aggressive backoff
	}

	start := time.Now()
	Do(context.Background(), cfg, func(ctx context.Context) (string, error) {
		return "", apperr.Upstream("failing", true, nil)
	})
	elapsed := time.Since(start)

	// With the cap, total sleep is roughly 50ms + 60ms + 60ms.
	// Allow generous margin for test flakiness.
	if elapsed > 500*time.Millisecond {
		t.Fatalf("expected delay to be capped, but total time was %v", elapsed)
	}
}
