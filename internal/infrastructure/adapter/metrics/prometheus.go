package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payment"

// Recorder implements core.MetricsRecorder on top of Prometheus collectors
type Recorder struct {
	confirmations     *prometheus.CounterVec
	signatureMismatch prometheus.Counter
	storeFailures     *prometheus.CounterVec
	statusChanges     *prometheus.CounterVec
	queryDuration     *prometheus.HistogramVec
	notifications     *prometheus.CounterVec
	dbConnections     *prometheus.GaugeVec
	dbWaits           prometheus.Gauge
}

// NewRecorder registers the payment collectors with reg.
// Collectors that are already registered are reused.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	return &Recorder{
		confirmations: must(registerIgnoreExisting(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "confirmations_total",
				Help:      "Gateway confirmations reconciled, by outcome.",
			},
			[]string{"outcome"},
		))).(*prometheus.CounterVec),
		signatureMismatch: must(registerIgnoreExisting(reg, prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "confirmation_signature_mismatch_total",
				Help:      "Confirmations whose token did not verify.",
			},
		))).(prometheus.Counter),
		storeFailures: must(registerIgnoreExisting(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_failures_total",
				Help:      "Store writes that failed after the gateway already acted.",
			},
			[]string{"operation"},
		))).(*prometheus.CounterVec),
		statusChanges: must(registerIgnoreExisting(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_changes_total",
				Help:      "Transaction status transitions, by target status.",
			},
			[]string{"status"},
		))).(*prometheus.CounterVec),
		queryDuration: must(registerIgnoreExisting(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Latency of transaction store queries.",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "failed"},
		))).(*prometheus.HistogramVec),
		notifications: must(registerIgnoreExisting(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notifications handed to sinks, by kind and result.",
			},
			[]string{"kind", "result"},
		))).(*prometheus.CounterVec),
		dbConnections: must(registerIgnoreExisting(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Store connection pool, by state (open, in_use, idle, max_open).",
			},
			[]string{"state"},
		))).(*prometheus.GaugeVec),
		dbWaits: must(registerIgnoreExisting(reg, prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connection_waits",
				Help:      "Connections waited for since the pool opened.",
			},
		))).(prometheus.Gauge),
	}
}

// ConfirmationProcessed counts a reconciled callback by outcome
func (r *Recorder) ConfirmationProcessed(outcome string) {
	r.confirmations.WithLabelValues(outcome).Inc()
}

// SignatureMismatch counts a callback whose token did not verify
func (r *Recorder) SignatureMismatch() {
	r.signatureMismatch.Inc()
}

// StoreFailure counts a store write that failed after the gateway already acted
func (r *Recorder) StoreFailure(operation string) {
	r.storeFailures.WithLabelValues(operation).Inc()
}

// PaymentStatusChanged counts transitions into a status
func (r *Recorder) PaymentStatusChanged(status string) {
	r.statusChanges.WithLabelValues(status).Inc()
}

// ObserveQuery records the duration of a store query
func (r *Recorder) ObserveQuery(operation string, seconds float64, failed bool) {
	label := "false"
	if failed {
		label = "true"
	}
	r.queryDuration.WithLabelValues(operation, label).Observe(seconds)
}

// NotificationDispatched counts a notification by kind and result (delivered, failed, dropped)
func (r *Recorder) NotificationDispatched(kind, result string) {
	r.notifications.WithLabelValues(kind, result).Inc()
}

// ObservePool publishes a connection pool sample
func (r *Recorder) ObservePool(open, inUse, idle, maxOpen int, waitCount int64) {
	r.dbConnections.WithLabelValues("open").Set(float64(open))
	r.dbConnections.WithLabelValues("in_use").Set(float64(inUse))
	r.dbConnections.WithLabelValues("idle").Set(float64(idle))
	r.dbConnections.WithLabelValues("max_open").Set(float64(maxOpen))
	r.dbWaits.Set(float64(waitCount))
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func must(v interface{}, err error) interface{} {
	if err != nil {
		panic(err.Error())
	}
	return v
}

func registerIgnoreExisting(reg prometheus.Registerer, c prometheus.Collector) (interface{}, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			switch c.(type) {
			case *prometheus.CounterVec:
				return are.ExistingCollector.(*prometheus.CounterVec), nil
			case *prometheus.GaugeVec:
				return are.ExistingCollector.(*prometheus.GaugeVec), nil
			case *prometheus.HistogramVec:
				return are.ExistingCollector.(*prometheus.HistogramVec), nil
			case prometheus.Counter:
				return are.ExistingCollector.(prometheus.Counter), nil
			case prometheus.Gauge:
				return are.ExistingCollector.(prometheus.Gauge), nil
			default:
				return nil, errors.New("unknown collector type")
			}
		}
		return nil, err
	}
	return c, nil
}
