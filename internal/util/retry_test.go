package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() *Policy {
	return &Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("always fails")
	calls := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Errorf("expected ErrAttemptsExhausted, got %v", err)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("expected original error to be preserved, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoNonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		calls++
		return MarkNonRetryable(errors.New("user rejected"))
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrAttemptsExhausted) {
		t.Error("non-retryable error should not exhaust attempts")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetryIfOverride(t *testing.T) {
	p := fastPolicy()
	p.RetryIf = func(err error) bool { return false }

	calls := 0
	err := Do(context.Background(), p, func() error {
		calls++
		return errors.New("fail")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoValueReturnsValue(t *testing.T) {
	val, err := DoValue(context.Background(), fastPolicy(), func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 42 {
		t.Errorf("val = %d, want 42", val)
	}
}

func TestDoContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := fastPolicy()
	p.BaseDelay = time.Second // make sure we'd block without cancellation

	err := Do(ctx, p, func() error {
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackoffDelayGrows(t *testing.T) {
	p := &Policy{BaseDelay: 10 * time.Millisecond, Multiplier: 2.0}

	d1 := backoffDelay(p, 1)
	d3 := backoffDelay(p, 3)
	if d3 <= d1 {
		t.Errorf("expected delay to grow: attempt1=%v attempt3=%v", d1, d3)
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	p := &Policy{BaseDelay: time.Second, MaxDelay: 2 * time.Second, Multiplier: 10}

	d := backoffDelay(p, 5)
	if d > 2*time.Second {
		t.Errorf("delay %v exceeds cap", d)
	}
}

func TestMarkNonRetryableNil(t *testing.T) {
	if MarkNonRetryable(nil) != nil {
		t.Error("MarkNonRetryable(nil) should be nil")
	}
}
