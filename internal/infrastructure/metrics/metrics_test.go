package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.CallbacksReceived == nil || m.SagaTransitions == nil || m.HTTPRequests == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.CallbacksUnrecognized.Inc()
	m.AuditWriteFailures.Inc()
	m.CallbacksUnmatched.WithLabelValues("PAYMENT_SUCCESS").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.CallbacksUnmatched.WithLabelValues("PAYMENT_SUCCESS")); got != 1 {
		t.Errorf("expected unmatched counter 1, got %v", got)
	}
}

func TestNewIsolatedRegistries(t *testing.T) {
	// Two instances on separate registries must not collide.
	a := New(prometheus.NewRegistry())
	b := New(prometheus.NewRegistry())

	a.CallbacksUnrecognized.Inc()

	if got := testutil.ToFloat64(b.CallbacksUnrecognized); got != 0 {
		t.Errorf("expected independent counters, got %v", got)
	}
}

func TestNewPanicsOnDuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	New(registry)
}
