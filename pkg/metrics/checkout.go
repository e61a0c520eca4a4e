package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout attempt outcomes and step latency.
type CheckoutMetrics struct {
	attempts *prometheus.CounterVec
	steps    *prometheus.HistogramVec
	results  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by payment branch and terminal state.",
	}, []string{"branch", "state"})
	steps := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_step_duration_seconds",
		Help:    "Duration of checkout steps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step", "outcome"})
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_results_total",
		Help: "Payment result views served by kind.",
	}, []string{"view"})
	reg.MustRegister(attempts, steps, results)
	return &CheckoutMetrics{
		attempts: attempts,
		steps:    steps,
		results:  results,
	}
}

// IncAttempt counts an attempt that reached a terminal state.
func (c *CheckoutMetrics) IncAttempt(branch, state string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(branch), normalizeLabel(state)).Inc()
}

// ObserveStep records how long a checkout step took.
func (c *CheckoutMetrics) ObserveStep(step string, ok bool, duration time.Duration) {
	if c == nil || c.steps == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	c.steps.WithLabelValues(normalizeLabel(step), outcome).Observe(duration.Seconds())
}

// IncResultView counts a rendered payment result view.
func (c *CheckoutMetrics) IncResultView(view string) {
	if c == nil || c.results == nil {
		return
	}
	c.results.WithLabelValues(normalizeLabel(view)).Inc()
}
