// Package gateway is the presentation boundary of the mesh. It terminates
// browser sessions, enforces roles, and forwards calls to the backend
// services with a bounded retry discipline.
package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
)

// Caller retries backend calls that fail for transport or server reasons.
// Business rejections are returned to the caller on the first attempt; only
// transient failures are retried, with a fixed delay, up to maxAttempts.
// When every attempt fails the last error is returned unchanged.
type Caller struct {
	maxAttempts int
	delay       time.Duration
	logger      *zap.Logger
	metrics     *service.MetricsService
}

// NewCaller builds a Caller. maxAttempts below one is clamped to one.
func NewCaller(maxAttempts int, delay time.Duration, logger *zap.Logger, metrics *service.MetricsService) *Caller {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Caller{maxAttempts: maxAttempts, delay: delay, logger: logger, metrics: metrics}
}

// Do invokes fn until it succeeds, fails with a business error, all attempts
// are spent, or the context is cancelled.
func (c *Caller) Do(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			c.record(operation, "ok")
			return nil
		}

		if !appErrors.IsTransient(err) {
			c.record(operation, "rejected")
			return err
		}

		c.record(operation, "transient")
		lastErr = err
		c.logger.Warn("backend call failed",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", c.maxAttempts),
			zap.Error(err),
		)

		if attempt == c.maxAttempts {
			break
		}

		timer := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

func (c *Caller) record(operation, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordBackendAttempt(operation, outcome)
	}
}
