package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/logger"
	mcore "github.com/amirhossein-jamali/payment-processor/mocks/port/core"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
	block  chan struct{}
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, ev Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) NotificationDispatched(_ string, result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[result]++
}

func (o *countingObserver) count(result string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[result]
}

func newTimeProvider(t *testing.T) *mcore.MockTimeProvider {
	tp := mcore.NewMockTimeProvider(t)
	tp.EXPECT().Now().Return(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)).Maybe()
	return tp
}

func snapshot(id string) entity.Transaction {
	return entity.Transaction{
		ID:            id,
		ShopProcessID: "sp-" + id,
		Status:        entity.StatusApproved,
		Amount:        decimal.RequireFromString("150000"),
		Currency:      entity.CurrencyPYG,
		Customer:      entity.Customer{Email: "buyer@example.com"},
	}
}

func TestDispatcherDeliversInOrderPerTransaction(t *testing.T) {
	sink := &recordingSink{}
	observer := &countingObserver{}
	d := NewDispatcher(Config{Workers: 3, QueueSize: 10}, []Sink{sink}, observer, newTimeProvider(t), logger.NewNoopLogger())

	kinds := []external.NotificationKind{
		external.NotifyPaymentApproved,
		external.NotifyDeliveryUpdated,
		external.NotifyDeliveryAttempt,
		external.NotifyDeliveryRated,
	}
	for _, k := range kinds {
		d.Notify(context.Background(), snapshot("tx-1"), k)
	}
	d.Notify(context.Background(), snapshot("tx-2"), external.NotifyPaymentRejected)

	require.NoError(t, d.Shutdown(context.Background()))

	var forTx1 []external.NotificationKind
	for _, ev := range sink.received() {
		if ev.TransactionID == "tx-1" {
			forTx1 = append(forTx1, ev.Kind)
		}
	}
	assert.Equal(t, kinds, forTx1)
	assert.Len(t, sink.received(), 5)
	assert.Equal(t, 5, observer.count(ResultDelivered))
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	observer := &countingObserver{}
	d := NewDispatcher(Config{Workers: 1, QueueSize: 1}, []Sink{sink}, observer, newTimeProvider(t), logger.NewNoopLogger())

	// first event occupies the worker, second fills the queue
	d.Notify(context.Background(), snapshot("tx-1"), external.NotifyPaymentApproved)
	require.Eventually(t, func() bool { return len(d.queues[0]) == 0 }, time.Second, time.Millisecond)
	d.Notify(context.Background(), snapshot("tx-1"), external.NotifyDeliveryUpdated)
	d.Notify(context.Background(), snapshot("tx-1"), external.NotifyDeliveryAttempt)

	assert.Equal(t, 1, observer.count(ResultDropped))

	close(sink.block)
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Len(t, sink.received(), 2)
}

func TestDispatcherSinkFailureIsCounted(t *testing.T) {
	failing := &recordingSink{err: errors.New("boom")}
	ok := &recordingSink{}
	observer := &countingObserver{}
	log := mcore.NewMockLogger(t)
	log.EXPECT().Info(mock.Anything, mock.Anything).Return().Maybe()
	log.EXPECT().Debug(mock.Anything, mock.Anything).Return().Maybe()
	log.EXPECT().Warn("Notification delivery failed", mock.Anything).Return().Once()

	d := NewDispatcher(Config{Workers: 1}, []Sink{failing, ok}, observer, newTimeProvider(t), log)
	d.Notify(context.Background(), snapshot("tx-1"), external.NotifyPaymentApproved)
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Equal(t, 1, observer.count(ResultFailed))
	assert.Equal(t, 1, observer.count(ResultDelivered))
	assert.Len(t, ok.received(), 1)
}

func TestDispatcherNotifyAfterShutdown(t *testing.T) {
	sink := &recordingSink{}
	observer := &countingObserver{}
	d := NewDispatcher(Config{}, []Sink{sink}, observer, newTimeProvider(t), logger.NewNoopLogger())
	require.NoError(t, d.Shutdown(context.Background()))
	require.NoError(t, d.Shutdown(context.Background()))

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), snapshot("tx-1"), external.NotifyPaymentApproved)
	})
	assert.Equal(t, 1, observer.count(ResultDropped))
	assert.Empty(t, sink.received())
}

func TestDispatcherShutdownTimeout(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	defer close(sink.block)
	d := NewDispatcher(Config{Workers: 1}, []Sink{sink}, nil, newTimeProvider(t), logger.NewNoopLogger())
	d.Notify(context.Background(), snapshot("tx-1"), external.NotifyPaymentApproved)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Shutdown(ctx), context.DeadlineExceeded)
}

func TestNewDispatcherRequiresSink(t *testing.T) {
	assert.Panics(t, func() {
		NewDispatcher(Config{}, nil, nil, newTimeProvider(t), logger.NewNoopLogger())
	})
}

func TestWebhookSink(t *testing.T) {
	var (
		gotBody      []byte
		gotSignature string
		gotKind      string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get(HeaderSignature)
		gotKind = r.Header.Get(HeaderEventKind)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, "hook-secret", time.Second, nil)
	ev := NewEvent(snapshot("tx-9"), external.NotifyPaymentApproved, time.Now())

	require.NoError(t, sink.Deliver(context.Background(), ev))

	var decoded Event
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "tx-9", decoded.TransactionID)
	assert.Equal(t, "150000.00", decoded.Amount)
	assert.Equal(t, entity.DeliveryPaymentConfirmed, decoded.DeliveryStatus)
	assert.Equal(t, string(external.NotifyPaymentApproved), gotKind)
	assert.Equal(t, Sign([]byte("hook-secret"), gotBody), gotSignature)
}

func TestWebhookSinkRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, "", time.Second, nil)
	err := sink.Deliver(context.Background(), NewEvent(snapshot("tx-9"), external.NotifyPaymentRejected, time.Now()))
	assert.ErrorContains(t, err, "502")
}
