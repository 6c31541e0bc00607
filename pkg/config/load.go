package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified
// path. It applies default values, validates the configuration, and
// returns any errors. The configuration is not modified by environment
// variables; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention MINOS_SECTION_FIELD (e.g.,
// MINOS_SERVER_LISTEN_ADDRESS) and always take precedence over
// file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("MINOS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if d, ok := envDuration("MINOS_SERVER_REQUEST_TIMEOUT"); ok {
		cfg.Server.RequestTimeout = d
	}
	if d, ok := envDuration("MINOS_SERVER_SHUTDOWN_TIMEOUT"); ok {
		cfg.Server.ShutdownTimeout = d
	}

	if val := os.Getenv("MINOS_SEMANTIC_ENDPOINT"); val != "" {
		cfg.Judges.Semantic.Endpoint = val
	}
	if d, ok := envDuration("MINOS_SEMANTIC_TIMEOUT"); ok {
		cfg.Judges.Semantic.Timeout = d
	}
	if val := os.Getenv("MINOS_RULE_ENGINE_ENDPOINT"); val != "" {
		cfg.Judges.RuleEngine.Endpoint = val
	}
	if d, ok := envDuration("MINOS_RULE_ENGINE_TIMEOUT"); ok {
		cfg.Judges.RuleEngine.Timeout = d
	}

	if val := os.Getenv("MINOS_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("MINOS_STORAGE_PATH"); val != "" {
		cfg.Storage.Path = val
	}
	if val := os.Getenv("MINOS_RETENTION_GRACE_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Storage.Retention.GraceDays = i
		}
	}

	if val := os.Getenv("MINOS_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("MINOS_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}

	if val := os.Getenv("MINOS_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("MINOS_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("MINOS_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}

func envDuration(name string) (time.Duration, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, false
	}
	return d, true
}
