package database

import (
	"context"
	"time"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
)

// QueryObserver receives the latency of every measured query
type QueryObserver interface {
	ObserveQuery(operation string, seconds float64, failed bool)
}

// QueryMetrics describes one measured store operation
type QueryMetrics struct {
	Operation    string
	Duration     time.Duration
	RowsAffected int64
	// Failed is false for errors caused by the caller's context ending
	Failed bool
}

// MetricsCollector times named store operations
type MetricsCollector struct {
	logger        coreport.Logger
	clock         coreport.TimeProvider
	observer      QueryObserver
	slowThreshold time.Duration
}

// DefaultSlowQuery is the latency above which a store operation is logged
const DefaultSlowQuery = 100 * time.Millisecond

// NewMetricsCollector creates a collector. observer may be nil.
func NewMetricsCollector(logger coreport.Logger, clock coreport.TimeProvider, observer QueryObserver) *MetricsCollector {
	return &MetricsCollector{
		logger:        logger,
		clock:         clock,
		observer:      observer,
		slowThreshold: DefaultSlowQuery,
	}
}

// MeasureQuery runs fn, reports its latency and warns when it is slow.
// fn returns the affected row count; fn's error is returned unchanged.
func (c *MetricsCollector) MeasureQuery(ctx context.Context, operation string, fn func() (int64, error)) (*QueryMetrics, error) {
	start := c.clock.Now()
	rows, err := fn()

	m := &QueryMetrics{
		Operation:    operation,
		Duration:     c.clock.Now().Sub(start),
		RowsAffected: rows,
		Failed:       err != nil && ctx.Err() == nil,
	}

	if c.observer != nil {
		c.observer.ObserveQuery(operation, m.Duration.Seconds(), m.Failed)
	}

	if m.Duration > c.slowThreshold {
		fields := map[string]any{
			"operation":     operation,
			"duration_ms":   m.Duration.Milliseconds(),
			"rows_affected": rows,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		c.logger.Warn("Slow store operation", fields)
	}

	return m, err
}
