package util

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Policy holds configuration for retry with exponential backoff.
// There is exactly one retry policy in the codebase; state-mutating
// chain calls wrap it around their RPC round-trips instead of carrying
// ad hoc retry loops at call sites.
type Policy struct {
	// MaxAttempts is the total number of attempts (1 = no retries).
	MaxAttempts int
	// BaseDelay is the initial delay between attempts.
	BaseDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
	// Multiplier is the factor by which delay increases (default: 2.0).
	Multiplier float64
	// Jitter adds randomness to delays to prevent thundering herd (0.0 - 1.0).
	Jitter float64
	// RetryIf decides whether an error is worth another attempt.
	// Nil retries everything except errors marked non-retryable.
	RetryIf func(error) bool
}

// DefaultPolicy returns sensible defaults for chain RPC calls.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts: 4,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
}

// ErrAttemptsExhausted is returned when every attempt failed.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// Do executes fn under the policy, sleeping with exponential backoff
// between attempts. The last error is joined with ErrAttemptsExhausted
// when all attempts fail.
func Do(ctx context.Context, p *Policy, fn func() error) error {
	_, err := DoValue(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoValue executes fn under the policy and returns its value on success.
func DoValue[T any](ctx context.Context, p *Policy, fn func() (T, error)) (T, error) {
	if p == nil {
		p = DefaultPolicy()
	}

	var zero T
	attempts := 0
	for {
		attempts++

		val, err := fn()
		if err == nil {
			return val, nil
		}

		retryable := !IsNonRetryable(err)
		if p.RetryIf != nil {
			retryable = p.RetryIf(err)
		}
		if !retryable {
			return zero, err
		}

		if p.MaxAttempts > 0 && attempts >= p.MaxAttempts {
			return zero, errors.Join(ErrAttemptsExhausted, err)
		}

		select {
		case <-ctx.Done():
			return zero, errors.Join(ctx.Err(), err)
		case <-time.After(backoffDelay(p, attempts)):
		}
	}
}

// backoffDelay calculates the delay before the next attempt.
func backoffDelay(p *Policy, attempt int) time.Duration {
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}

	// delay = baseDelay * multiplier^(attempt-1)
	delay := float64(p.BaseDelay) * math.Pow(multiplier, float64(attempt-1))

	if p.Jitter > 0 {
		jitterRange := delay * p.Jitter
		delay = delay - jitterRange + (rand.Float64() * 2 * jitterRange)
	}

	if p.MaxDelay > 0 && time.Duration(delay) > p.MaxDelay {
		delay = float64(p.MaxDelay)
	}

	return time.Duration(delay)
}

// NonRetryableError wraps an error and marks it as not worth retrying
// (user rejections, configuration defects, contract reverts).
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return e.Err.Error()
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// IsNonRetryable checks if an error is marked as non-retryable.
func IsNonRetryable(err error) bool {
	var nonRetryable *NonRetryableError
	return errors.As(err, &nonRetryable)
}

// MarkNonRetryable marks an error as non-retryable.
func MarkNonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryableError{Err: err}
}
