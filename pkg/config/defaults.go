package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 300 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 120 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true

	// Judge defaults
	DefaultSemanticTimeout   = 60 * time.Second
	DefaultRuleEngineTimeout = 30 * time.Second

	// Storage defaults
	DefaultStorageBackend = "sqlite"
	DefaultStoragePath    = "data/results.db"

	// Retention defaults
	DefaultRetentionGraceDays = 30
	DefaultPruneSchedule      = "0 3 * * *"

	// Audit defaults
	DefaultAuditEnabled = true
	DefaultAuditPath    = "data/audit.db"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "minos"
)

// DefaultConfig returns a fully populated configuration with default
// values. Judge endpoints have no useful default and stay empty.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any zero-valued fields in
// the configuration. It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.CORS.AllowedOrigins == nil {
		cfg.Server.CORS.Enabled = DefaultCORSEnabled
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.CORS.AllowedMethods == nil {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if cfg.Server.CORS.AllowedHeaders == nil {
		cfg.Server.CORS.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}

	if cfg.Judges.Semantic.Timeout == 0 {
		cfg.Judges.Semantic.Timeout = DefaultSemanticTimeout
	}
	if cfg.Judges.RuleEngine.Timeout == 0 {
		cfg.Judges.RuleEngine.Timeout = DefaultRuleEngineTimeout
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Storage.Retention.GraceDays == 0 {
		cfg.Storage.Retention.GraceDays = DefaultRetentionGraceDays
	}
	if cfg.Storage.Retention.PruneSchedule == "" {
		cfg.Storage.Retention.PruneSchedule = DefaultPruneSchedule
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Enabled = DefaultAuditEnabled
		cfg.Audit.Path = DefaultAuditPath
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
