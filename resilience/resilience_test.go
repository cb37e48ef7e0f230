package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}

	err := RetryWithConfig(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RetryWithConfig: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, Multiplier: 2.0}
	sentinel := errors.New("still broken")

	err := RetryWithConfig(context.Background(), cfg, func() error {
		attempts++
		return sentinel
	})

	var exhausted ErrMaxRetriesExceeded
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want ErrMaxRetriesExceeded", err)
	}
	if exhausted.Attempts != 2 || !errors.Is(err, sentinel) {
		t.Fatalf("exhausted = %+v", exhausted)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestRetryIfShortCircuits(t *testing.T) {
	attempts := 0
	permanent := errors.New("bad request")
	cfg := &RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		Multiplier:   2.0,
		RetryIf:      func(err error) bool { return !errors.Is(err, permanent) },
	}

	err := RetryWithConfig(context.Background(), cfg, func() error {
		attempts++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want the permanent error unwrapped", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestRetryRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &RetryConfig{MaxAttempts: 10, InitialDelay: 50 * time.Millisecond, Multiplier: 1.0}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RetryWithConfig(ctx, cfg, func() error { return errors.New("transient") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(context.Canceled) || IsRetryable(context.DeadlineExceeded) {
		t.Fatal("context errors must not be retryable")
	}
	if !IsRetryable(errors.New("timeout")) {
		t.Fatal("generic errors are retryable")
	}
}

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Hour)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		if err := cb.Execute(func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("Execute %d: %v", i, err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open", cb.GetState())
	}
	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker ran the call: %v", err)
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	_ = cb.Execute(func() error { return errors.New("boom") })
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open", cb.GetState())
	}

	time.Sleep(20 * time.Millisecond)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("half-open probe failed: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("state = %v, want closed after probe success", cb.GetState())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	_ = cb.Execute(func() error { return errors.New("boom") })
	time.Sleep(20 * time.Millisecond)

	_ = cb.Execute(func() error { return errors.New("still boom") })
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want reopened", cb.GetState())
	}
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Hour)

	_ = cb.Execute(func() error { return errors.New("boom") })
	_ = cb.Execute(func() error { return errors.New("boom") })
	_ = cb.Execute(func() error { return nil })

	if cb.GetFailures() != 0 {
		t.Fatalf("failures = %d, want 0 after success", cb.GetFailures())
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("state = %v, want closed", cb.GetState())
	}
}

func TestBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Hour)
	_ = cb.Execute(func() error { return errors.New("boom") })

	cb.Reset()
	if cb.GetState() != StateClosed || cb.GetFailures() != 0 {
		t.Fatalf("Reset left state=%v failures=%d", cb.GetState(), cb.GetFailures())
	}
}
