package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSleep records requested delays without waiting.
func fakeSleep(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestDoWithResult(t *testing.T) {
	t.Run("returns on first success", func(t *testing.T) {
		var delays []time.Duration
		cfg := FixedConfig(5, time.Second)
		cfg.Sleep = fakeSleep(&delays)

		calls := 0
		result, err := DoWithResult(context.Background(), cfg, func() (string, error) {
			calls++
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 1, calls)
		assert.Empty(t, delays)
	})

	t.Run("retries until success", func(t *testing.T) {
		var delays []time.Duration
		cfg := FixedConfig(5, time.Second)
		cfg.Sleep = fakeSleep(&delays)

		calls := 0
		result, err := DoWithResult(context.Background(), cfg, func() (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("not yet")
			}
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, result)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{time.Second, time.Second}, delays)
	})

	t.Run("exhausts attempts and returns last error", func(t *testing.T) {
		var delays []time.Duration
		cfg := FixedConfig(4, time.Second)
		cfg.Sleep = fakeSleep(&delays)

		sentinel := errors.New("still failing")
		calls := 0
		_, err := DoWithResult(context.Background(), cfg, func() (int, error) {
			calls++
			return 0, sentinel
		})

		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 4, calls)
		// No wait after the last attempt.
		assert.Len(t, delays, 3)
	})

	t.Run("non-retryable error fails fast", func(t *testing.T) {
		var delays []time.Duration
		cfg := FixedConfig(5, time.Second)
		cfg.Sleep = fakeSleep(&delays)
		cfg.RetryableErrors = []string{"connection refused"}

		sentinel := errors.New("permission denied")
		calls := 0
		_, err := DoWithResult(context.Background(), cfg, func() (int, error) {
			calls++
			return 0, sentinel
		})

		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, calls)
		assert.Empty(t, delays)
	})

	t.Run("canceled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := FixedConfig(5, time.Second)
		cfg.Sleep = func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		}

		calls := 0
		_, err := DoWithResult(ctx, cfg, func() (int, error) {
			calls++
			return 0, errors.New("not yet")
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts is invalid", func(t *testing.T) {
		_, err := DoWithResult(context.Background(), Config{}, func() (int, error) {
			t.Fatal("should not be called")
			return 0, nil
		})
		assert.Error(t, err)
	})
}

func TestDo(t *testing.T) {
	var delays []time.Duration
	cfg := FixedConfig(3, 100*time.Millisecond)
	cfg.Sleep = fakeSleep(&delays)

	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, delays)
}

func TestCalculateDelay(t *testing.T) {
	cfg := Config{
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}

	assert.Equal(t, time.Second, calculateDelay(0, cfg))
	assert.Equal(t, 2*time.Second, calculateDelay(1, cfg))
	assert.Equal(t, 4*time.Second, calculateDelay(2, cfg))
	// Capped at MaxDelay.
	assert.Equal(t, 10*time.Second, calculateDelay(5, cfg))
}

func TestFixedConfig(t *testing.T) {
	cfg := FixedConfig(10, 3*time.Second)

	assert.Equal(t, 10, cfg.MaxAttempts)
	assert.Equal(t, 3*time.Second, calculateDelay(0, cfg))
	assert.Equal(t, 3*time.Second, calculateDelay(7, cfg))
	assert.False(t, cfg.Jitter)
}

func TestIsRetryableError(t *testing.T) {
	cfg := Config{RetryableErrors: DefaultPostgresRetryableErrors()}

	assert.True(t, IsRetryableError(errors.New("dial tcp 10.0.0.1:5432: connection refused"), cfg))
	assert.False(t, IsRetryableError(errors.New("syntax error at or near"), cfg))
	assert.False(t, IsRetryableError(nil, cfg))

	// Empty pattern list retries everything.
	assert.True(t, IsRetryableError(errors.New("anything"), Config{}))
}
