package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Transient marks an error as worth retrying. Gateway implementations wrap
// network and rate-limit failures with it.
type Transient struct {
	Err error
}

func (t *Transient) Error() string { return t.Err.Error() }
func (t *Transient) Unwrap() error { return t.Err }

// IsTransient reports whether any error in the chain is retryable.
func IsTransient(err error) bool {
	var t *Transient
	return errors.As(err, &t)
}

// Retry runs fn up to attempts times, sleeping delay between tries and
// doubling it each time up to maxDelay. Non-transient errors abort
// immediately, as does context cancellation.
func Retry[T any](ctx context.Context, attempts int, delay, maxDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if !IsTransient(err) {
			return zero, err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, err)
}
