package runner

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
}

// Backoff is the wait before each retry: InitialDelay, doubled every time.
func (p RetryPolicy) Backoff() []time.Duration {
	if p.MaxRetries <= 0 {
		return nil
	}
	out := make([]time.Duration, p.MaxRetries)
	d := p.InitialDelay
	for i := range out {
		out[i] = d
		d *= 2
	}
	return out
}

type marketDataError struct {
	label    string
	attempts int
	cause    error
}

func (e *marketDataError) Error() string {
	return errors.Wrapf(e.cause, "%s failed after %d attempts", e.label, e.attempts).Error()
}

func (e *marketDataError) Is(target error) bool { return target == ErrMarketData }

func (e *marketDataError) Unwrap() error { return e.cause }

// WithRetry runs op up to MaxRetries+1 times. The last error comes back
// matching ErrMarketData. Order submission must never go through here.
func WithRetry[T any](ctx context.Context, log *zap.Logger, label string, p RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	delays := p.Backoff()

	var err error
	attempt := 0
	for {
		attempt++
		var v T
		v, err = op(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || attempt > len(delays) {
			break
		}

		wait := delays[attempt-1]
		log.Warn("retrying",
			zap.String("op", label),
			zap.Int("attempt", attempt),
			zap.Duration("delay", wait),
			zap.Error(err),
		)
		if !sleepCtx(ctx, wait) {
			break
		}
	}
	return zero, &marketDataError{label: label, attempts: attempt, cause: err}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
