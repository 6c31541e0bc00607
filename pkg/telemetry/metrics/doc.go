// Package metrics exposes Prometheus metrics for the review service.
//
// A Collector owns a private registry and per-concern metric groups:
// judge calls (latency, errors, health), review batches (rules per
// track, fallbacks, durations), and the result store (saves,
// duplicate skips). Handler() serves the registry in OpenMetrics
// format for scraping:
//
//	collector := metrics.NewCollector(metrics.Config{Namespace: "minos"})
//	mux.Handle("/metrics", collector.Handler())
//
// All recording methods are nil-safe so wiring metrics stays optional
// in tests.
package metrics
