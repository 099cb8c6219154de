package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InstrumentRoundTripper wraps rt with in-flight, request count and latency metrics
// labelled with the remote service name
func InstrumentRoundTripper(reg prometheus.Registerer, rt http.RoundTripper, service string) http.RoundTripper {
	inFlight := must(registerIgnoreExisting(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "client_in_flight_requests",
		Help:        "A gauge of in-flight requests for the wrapped client.",
		ConstLabels: prometheus.Labels{"service": service},
	}))).(prometheus.Gauge)

	counter := must(registerIgnoreExisting(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "client_api_requests_total",
			Help:        "A counter for requests from the wrapped client.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"code", "method"},
	))).(*prometheus.CounterVec)

	duration := must(registerIgnoreExisting(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "client_request_duration_seconds",
			Help:        "A histogram of request latencies.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{},
	))).(*prometheus.HistogramVec)

	return promhttp.InstrumentRoundTripperInFlight(inFlight,
		promhttp.InstrumentRoundTripperCounter(counter,
			promhttp.InstrumentRoundTripperDuration(duration, rt),
		),
	)
}
