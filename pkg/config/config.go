package config

import "time"

// Config is the root configuration structure for Minos. It contains
// all configuration sections for the HTTP server, the two judge
// backends, result storage, the audit trail, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen
	// address, timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Judges contains configuration for the two review backends.
	Judges JudgesConfig `yaml:"judges"`

	// Storage contains configuration for the result store including
	// backend selection and retention settings.
	Storage StorageConfig `yaml:"storage"`

	// Audit contains configuration for the append-only audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for observability including
	// logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen
	// on. Format: "host:port".
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes
	// of the response. Streaming review responses hold the connection
	// open for the whole batch, so this must comfortably exceed the
	// judge timeouts.
	// Default: 300s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds non-streaming request handling. Streaming
	// endpoints are exempt.
	// Default: 120s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use ["*"] to allow all origins.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// JudgesConfig contains configuration for both review backends.
type JudgesConfig struct {
	// Semantic configures the streaming semantic review backend.
	Semantic JudgeConfig `yaml:"semantic"`

	// RuleEngine configures the deterministic rule engine backend.
	RuleEngine JudgeConfig `yaml:"rule_engine"`
}

// JudgeConfig contains configuration for a single judge backend.
type JudgeConfig struct {
	// Endpoint is the base URL of the backend, without the query
	// path. Required.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single call to the backend, including reading
	// the full response body.
	// Default: 60s for semantic, 30s for rule_engine
	Timeout time.Duration `yaml:"timeout"`

	// Headers are extra HTTP headers sent with every request, for
	// example authentication tokens.
	Headers map[string]string `yaml:"headers"`
}

// StorageConfig contains configuration for the result store.
type StorageConfig struct {
	// Backend selects the storage implementation: "sqlite" or
	// "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path. Ignored for the memory
	// backend.
	// Default: "data/results.db"
	Path string `yaml:"path"`

	// Retention controls pruning of soft-deleted results.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls when soft-deleted results are purged.
type RetentionConfig struct {
	// GraceDays is how long soft-deleted results are kept before the
	// pruner removes them. Zero or negative disables pruning.
	// Default: 30
	GraceDays int `yaml:"grace_days"`

	// PruneSchedule is the cron expression for the pruning job.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// AuditConfig contains configuration for the audit trail.
type AuditConfig struct {
	// Enabled controls whether review activity is recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path for the trail.
	// Default: "data/audit.db"
	Path string `yaml:"path"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource controls whether log records include the source
	// file and line.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the prefix for all metric names.
	// Default: "minos"
	Namespace string `yaml:"namespace"`
}
