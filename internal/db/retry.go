package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Retry bounds the initial connection attempts to a backing store.
type Retry struct {
	Attempts int
	Backoff  time.Duration
}

// Do calls fn until it succeeds or the attempts run out, doubling the wait
// between tries. It returns the last error.
func (r Retry) Do(ctx context.Context, logger *zap.Logger, fn func(context.Context) error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	wait := r.Backoff

	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		logger.Warn("connection attempt failed, retrying",
			zap.Int("attempt", i),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}
