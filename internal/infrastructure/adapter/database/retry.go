package database

import (
	"context"
	"math/rand/v2"
	"time"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
)

// RetryConfig bounds retries of idempotent store reads
type RetryConfig struct {
	MaxRetries    int
	RetryInterval time.Duration
	MaxInterval   time.Duration
	JitterFactor  float64 // share of the delay added at random, 0..1
}

// DefaultRetryConfig suits lookups on the confirmation path, where the gateway waits for an ack
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		RetryInterval: 50 * time.Millisecond,
		MaxInterval:   time.Second,
		JitterFactor:  0.2,
	}
}

// Delay is the pause before retry number attempt (0 based): doubling from RetryInterval,
// capped at MaxInterval, plus jitter
func (c RetryConfig) Delay(attempt int) time.Duration {
	d := c.RetryInterval << min(attempt, 30)
	if c.MaxInterval > 0 && (d > c.MaxInterval || d <= 0) {
		d = c.MaxInterval
	}
	if c.JitterFactor > 0 {
		d += time.Duration(float64(d) * c.JitterFactor * rand.Float64())
	}
	return d
}

// RetryOnTransientError calls operation until it succeeds, returns an error isTransient rejects,
// runs out of attempts or ctx ends. The last error is returned.
// Never use it for writes that are not idempotent.
func RetryOnTransientError(
	ctx context.Context,
	config RetryConfig,
	operation func() error,
	isTransient func(error) bool,
	logger coreport.Logger,
) error {
	attempts := max(config.MaxRetries, 1)

	err := operation()
	for attempt := 1; err != nil && attempt < attempts && isTransient(err); attempt++ {
		delay := config.Delay(attempt - 1)
		logger.Warn("Transient database error, retrying", map[string]any{
			"attempt":     attempt,
			"of":          attempts,
			"error":       err.Error(),
			"retry_after": delay.String(),
		})

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			logger.Warn("Retry abandoned, context done", map[string]any{
				"attempt": attempt,
				"error":   ctx.Err().Error(),
			})
			return err
		}
		err = operation()
	}
	return err
}
