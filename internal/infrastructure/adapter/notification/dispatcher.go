package notification

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
)

// Dispatch results reported to the observer
const (
	ResultDelivered = "delivered"
	ResultFailed    = "failed"
	ResultDropped   = "dropped"
)

// Observer is told about every dispatch result
type Observer interface {
	NotificationDispatched(kind, result string)
}

// Config sizes the worker pool
type Config struct {
	Workers        int
	QueueSize      int
	DeliverTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
	if c.DeliverTimeout <= 0 {
		c.DeliverTimeout = 10 * time.Second
	}
	return c
}

// Dispatcher fans notifications out to sinks on a bounded worker pool.
// Events for one transaction always land on the same worker, so they are delivered in order.
// Notify never blocks: when a worker queue is full the event is dropped and logged.
type Dispatcher struct {
	config       Config
	sinks        []Sink
	observer     Observer
	timeProvider coreport.TimeProvider
	logger       coreport.Logger

	queues []chan Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ external.Notifier = (*Dispatcher)(nil)

// NewDispatcher starts the workers. observer may be nil.
func NewDispatcher(
	config Config,
	sinks []Sink,
	observer Observer,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Dispatcher {
	if len(sinks) == 0 {
		panic("notification dispatcher needs at least one sink")
	}
	config = config.withDefaults()

	d := &Dispatcher{
		config:       config,
		sinks:        sinks,
		observer:     observer,
		timeProvider: timeProvider,
		logger:       logger,
		queues:       make([]chan Event, config.Workers),
	}
	for i := range d.queues {
		d.queues[i] = make(chan Event, config.QueueSize)
		d.wg.Add(1)
		go d.work(i, d.queues[i])
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logger.Info("Notification dispatcher started", map[string]any{
		"workers":    config.Workers,
		"queue_size": config.QueueSize,
		"sinks":      names,
	})
	return d
}

// Notify queues an event built from snapshot
func (d *Dispatcher) Notify(_ context.Context, snapshot entity.Transaction, kind external.NotificationKind) {
	ev := NewEvent(snapshot, kind, d.timeProvider.Now())

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(ev, "dispatcher stopped")
		return
	}

	select {
	case d.queues[d.slot(ev.TransactionID)] <- ev:
		d.logger.Debug("Notification queued", map[string]any{
			"event_id":       ev.ID,
			"kind":           ev.Kind,
			"transaction_id": ev.TransactionID,
		})
	default:
		d.drop(ev, "queue full")
	}
}

// Shutdown stops accepting events and waits for queued ones to drain or ctx to expire
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.logger.Info("Shutting down notification dispatcher", nil)

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Notification dispatcher drained", nil)
		return nil
	case <-ctx.Done():
		d.logger.Warn("Notification dispatcher did not drain in time", map[string]any{
			"error": ctx.Err().Error(),
		})
		return ctx.Err()
	}
}

func (d *Dispatcher) work(id int, queue <-chan Event) {
	defer d.wg.Done()
	for ev := range queue {
		for _, sink := range d.sinks {
			d.deliver(id, sink, ev)
		}
	}
}

func (d *Dispatcher) deliver(worker int, sink Sink, ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.DeliverTimeout)
	defer cancel()

	if err := sink.Deliver(ctx, ev); err != nil {
		d.logger.Warn("Notification delivery failed", map[string]any{
			"worker":         worker,
			"sink":           sink.Name(),
			"event_id":       ev.ID,
			"kind":           ev.Kind,
			"transaction_id": ev.TransactionID,
			"error":          err.Error(),
		})
		d.observe(ev.Kind, ResultFailed)
		return
	}
	d.observe(ev.Kind, ResultDelivered)
}

func (d *Dispatcher) drop(ev Event, reason string) {
	d.logger.Warn("Notification dropped", map[string]any{
		"reason":         reason,
		"event_id":       ev.ID,
		"kind":           ev.Kind,
		"transaction_id": ev.TransactionID,
	})
	d.observe(ev.Kind, ResultDropped)
}

func (d *Dispatcher) observe(kind external.NotificationKind, result string) {
	if d.observer != nil {
		d.observer.NotificationDispatched(string(kind), result)
	}
}

func (d *Dispatcher) slot(transactionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(transactionID))
	return int(h.Sum32() % uint32(len(d.queues)))
}
