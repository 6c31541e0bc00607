package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BatchMetrics tracks review batches through the pipeline.
type BatchMetrics struct {
	batches   *prometheus.CounterVec
	rules     *prometheus.CounterVec
	fallbacks prometheus.Counter
	duration  prometheus.Histogram
}

func newBatchMetrics(namespace string, registry *prometheus.Registry) *BatchMetrics {
	m := &BatchMetrics{
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "batches_total",
			Help:      "Review batches by outcome.",
		}, []string{"outcome"}),
		rules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "rules_total",
			Help:      "Rules processed by track and result.",
		}, []string{"track", "result"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "fallbacks_total",
			Help:      "Deterministic-track rules resolved by the fallback policy.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "batch_duration_seconds",
			Help:      "Wall time from batch receipt to batch_completed.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	registry.MustRegister(m.batches, m.rules, m.fallbacks, m.duration)
	return m
}

// ObserveBatch records one completed batch.
func (m *BatchMetrics) ObserveBatch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

// ObserveRule records one processed rule.
func (m *BatchMetrics) ObserveRule(track, result string) {
	if m == nil {
		return
	}
	m.rules.WithLabelValues(track, result).Inc()
}

// ObserveFallback records one fallback-resolved rule.
func (m *BatchMetrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}
