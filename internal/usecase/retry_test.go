package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitos/futures-trader/internal/usecase"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	v, err := usecase.Retry(context.Background(), 3, time.Millisecond, time.Millisecond,
		func(ctx context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, &usecase.Transient{Err: errors.New("rate limited")}
			}
			return 42, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestRetry_NonTransientAbortsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("invalid symbol")
	_, err := usecase.Retry(context.Background(), 5, time.Millisecond, time.Millisecond,
		func(ctx context.Context) (int, error) {
			calls++
			return 0, boom
		})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := usecase.Retry(context.Background(), 3, time.Millisecond, time.Millisecond,
		func(ctx context.Context) (int, error) {
			calls++
			return 0, &usecase.Transient{Err: errors.New("timeout")}
		})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, usecase.IsTransient(err))
}

func TestRetry_ContextCancelStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := usecase.Retry(ctx, 3, time.Minute, time.Minute,
		func(ctx context.Context) (int, error) {
			calls++
			return 0, &usecase.Transient{Err: errors.New("timeout")}
		})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, usecase.IsTransient(errors.New("plain")))
	assert.True(t, usecase.IsTransient(&usecase.Transient{Err: errors.New("x")}))

	wrapped := errors.Join(errors.New("context"), &usecase.Transient{Err: errors.New("io")})
	assert.True(t, usecase.IsTransient(wrapped))
}
