package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JudgeMetrics tracks calls to the upstream judge services.
type JudgeMetrics struct {
	calls    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newJudgeMetrics(namespace string, registry *prometheus.Registry) *JudgeMetrics {
	m := &JudgeMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "judge",
			Name:      "calls_total",
			Help:      "Judge calls by judge name and outcome.",
		}, []string{"judge", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "judge",
			Name:      "errors_total",
			Help:      "Judge call errors by judge name and error kind.",
		}, []string{"judge", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "judge",
			Name:      "call_duration_seconds",
			Help:      "Judge call duration.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"judge"}),
	}
	registry.MustRegister(m.calls, m.errors, m.duration)
	return m
}

// ObserveCall records one judge call.
func (m *JudgeMetrics) ObserveCall(judge string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.calls.WithLabelValues(judge, outcome).Inc()
	m.duration.WithLabelValues(judge).Observe(d.Seconds())
}

// ObserveError records a judge error by kind.
func (m *JudgeMetrics) ObserveError(judge, kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(judge, kind).Inc()
}
