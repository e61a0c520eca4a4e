package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics records calls made to the storefront backend.
type BackendMetrics struct {
	duration     *prometheus.HistogramVec
	requests     *prometheus.CounterVec
	breakerState *prometheus.GaugeVec
}

// NewBackendMetrics registers the backend client metrics on the provided registerer.
func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	if reg == nil {
		return &BackendMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of storefront backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Storefront backend requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	breakerState := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "backend_circuit_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
	}, []string{"breaker"})
	reg.MustRegister(duration, requests, breakerState)
	return &BackendMetrics{
		duration:     duration,
		requests:     requests,
		breakerState: breakerState,
	}
}

// ObserveRequest records one finished backend call.
func (b *BackendMetrics) ObserveRequest(endpoint, outcome string, duration time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	b.duration.WithLabelValues(endpoint).Observe(duration.Seconds())
	b.requests.WithLabelValues(endpoint, normalizeLabel(outcome)).Inc()
}

// SetBreakerState publishes the numeric breaker state.
func (b *BackendMetrics) SetBreakerState(name string, state float64) {
	if b == nil || b.breakerState == nil {
		return
	}
	b.breakerState.WithLabelValues(normalizeLabel(name)).Set(state)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
