package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.IncAttempt("ELECTRONIC", "REDIRECTING")
	m.IncAttempt("ELECTRONIC", "REDIRECTING")
	m.IncAttempt("", "FAILED")
	m.ObserveStep("create_order", true, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.attempts.WithLabelValues("ELECTRONIC", "REDIRECTING")); got != 2 {
		t.Fatalf("expected 2 redirecting attempts, got %v", got)
	}
	if got := testutil.ToFloat64(m.attempts.WithLabelValues("unknown", "FAILED")); got != 1 {
		t.Fatalf("expected empty branch normalized to unknown, got %v", got)
	}
}

func TestBackendMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBackendMetrics(reg)

	m.ObserveRequest("create_order", "ok", 5*time.Millisecond)
	m.ObserveRequest("create_order", "TIMEOUT", time.Second)
	m.SetBreakerState("storefront", 1)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("create_order", "TIMEOUT")); got != 1 {
		t.Fatalf("expected 1 timeout, got %v", got)
	}
	if got := testutil.ToFloat64(m.breakerState.WithLabelValues("storefront")); got != 1 {
		t.Fatalf("expected open breaker gauge, got %v", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var c *CheckoutMetrics
	c.IncAttempt("a", "b")
	c.ObserveStep("a", false, time.Second)
	c.IncResultView("success")

	var b *BackendMetrics
	b.ObserveRequest("a", "b", time.Second)
	b.SetBreakerState("a", 0)

	unregistered := NewCheckoutMetrics(nil)
	unregistered.IncAttempt("a", "b")
}
