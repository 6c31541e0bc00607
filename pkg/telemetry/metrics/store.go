package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics tracks result-store operations.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duplicates prometheus.Counter
}

func newStoreMetrics(namespace string, registry *prometheus.Registry) *StoreMetrics {
	m := &StoreMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "duplicate_skips_total",
			Help:      "Saves skipped because the (session, rule) key already existed.",
		}),
	}
	registry.MustRegister(m.operations, m.duplicates)
	return m
}

// ObserveOperation records one store operation.
func (m *StoreMetrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveDuplicateSkip records one idempotent duplicate skip.
func (m *StoreMetrics) ObserveDuplicateSkip() {
	if m == nil {
		return
	}
	m.duplicates.Inc()
}
