package database

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
)

// PoolObserver receives every connection pool sample
type PoolObserver interface {
	ObservePool(open, inUse, idle, maxOpen int, waitCount int64)
}

// PoolSample is one reading of the connection pool
type PoolSample struct {
	Open      int
	InUse     int
	Idle      int
	MaxOpen   int
	WaitCount int64
	WaitTime  time.Duration
}

// Saturated reports whether more than 80% of a bounded pool is busy
func (s PoolSample) Saturated() bool {
	return s.MaxOpen > 1 && s.InUse*5 > s.MaxOpen*4
}

func sampleFrom(stats sql.DBStats) PoolSample {
	return PoolSample{
		Open:      stats.OpenConnections,
		InUse:     stats.InUse,
		Idle:      stats.Idle,
		MaxOpen:   stats.MaxOpenConnections,
		WaitCount: stats.WaitCount,
		WaitTime:  stats.WaitDuration,
	}
}

// PoolSampler reads the pool on an interval, publishes it to the observer and warns
// once per saturation episode
type PoolSampler struct {
	stats    func() (sql.DBStats, error)
	observer PoolObserver
	logger   coreport.Logger

	mu        sync.RWMutex
	last      PoolSample
	saturated bool

	stopOnce sync.Once
	stop     chan struct{}
}

// NewPoolSampler creates a sampler over stats. observer may be nil.
func NewPoolSampler(stats func() (sql.DBStats, error), observer PoolObserver, logger coreport.Logger) *PoolSampler {
	return &PoolSampler{
		stats:    stats,
		observer: observer,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start takes a first sample and keeps sampling in the background until Stop
func (s *PoolSampler) Start(interval time.Duration) error {
	if err := s.Sample(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Sample(); err != nil {
					s.logger.Error("Failed to sample connection pool", map[string]any{"error": err.Error()})
				}
			case <-s.stop:
				return
			}
		}
	}()
	return nil
}

// Stop ends background sampling; safe to call more than once
func (s *PoolSampler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Last returns the most recent sample
func (s *PoolSampler) Last() PoolSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Sample reads the pool once
func (s *PoolSampler) Sample() error {
	stats, err := s.stats()
	if err != nil {
		return fmt.Errorf("read pool stats: %w", err)
	}
	sample := sampleFrom(stats)

	s.mu.Lock()
	s.last = sample
	wasSaturated := s.saturated
	s.saturated = sample.Saturated()
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObservePool(sample.Open, sample.InUse, sample.Idle, sample.MaxOpen, sample.WaitCount)
	}

	switch {
	case sample.Saturated() && !wasSaturated:
		s.logger.Warn("Database connection pool nearly exhausted", map[string]any{
			"in_use":     sample.InUse,
			"max_open":   sample.MaxOpen,
			"idle":       sample.Idle,
			"wait_count": sample.WaitCount,
			"wait_time":  sample.WaitTime.String(),
		})
	case !sample.Saturated() && wasSaturated:
		s.logger.Info("Database connection pool recovered", map[string]any{
			"in_use":   sample.InUse,
			"max_open": sample.MaxOpen,
		})
	}
	return nil
}
