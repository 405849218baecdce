package runner

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fastRetry = RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond}

func TestBackoff(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, p.Backoff())
	assert.Empty(t, RetryPolicy{}.Backoff())
}

func TestWithRetryRecovers(t *testing.T) {
	calls := 0
	v, err := WithRetry(context.Background(), zap.NewNop(), "op", fastRetry, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhausted(t *testing.T) {
	cause := errors.New("still down")
	calls := 0
	_, err := WithRetry(context.Background(), zap.NewNop(), "klines 1h", fastRetry, func(context.Context) (int, error) {
		calls++
		return 0, cause
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, ErrMarketData)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "klines 1h failed after 4 attempts")
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := WithRetry(ctx, zap.NewNop(), "op", RetryPolicy{MaxRetries: 3, InitialDelay: time.Hour}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("down")
	})
	assert.ErrorIs(t, err, ErrMarketData)
	assert.Equal(t, 1, calls)
}

func TestWithRetryNoRetries(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), zap.NewNop(), "op", RetryPolicy{}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("down")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
