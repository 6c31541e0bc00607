package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Config configures the metrics collector.
type Config struct {
	// Namespace prefixes every metric name. Defaults to "minos".
	Namespace string

	// EnableGoMetrics adds the standard Go runtime collectors.
	EnableGoMetrics bool
}

// Collector owns the Prometheus registry and the per-concern metric
// groups.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	judge *JudgeMetrics
	batch *BatchMetrics
	store *StoreMetrics
}

// NewCollector creates a Collector with all metric groups registered.
func NewCollector(cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg.Namespace = "minos"
	}
	registry := prometheus.NewRegistry()
	if cfg.EnableGoMetrics {
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return &Collector{
		config:   cfg,
		registry: registry,
		judge:    newJudgeMetrics(cfg.Namespace, registry),
		batch:    newBatchMetrics(cfg.Namespace, registry),
		store:    newStoreMetrics(cfg.Namespace, registry),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Judge returns the judge metric group. Safe on a nil Collector.
func (c *Collector) Judge() *JudgeMetrics {
	if c == nil {
		return nil
	}
	return c.judge
}

// Batch returns the batch metric group. Safe on a nil Collector.
func (c *Collector) Batch() *BatchMetrics {
	if c == nil {
		return nil
	}
	return c.batch
}

// Store returns the store metric group. Safe on a nil Collector.
func (c *Collector) Store() *StoreMetrics {
	if c == nil {
		return nil
	}
	return c.store
}
