package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific
// configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "judges.semantic.endpoint").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides
// access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. All validation errors
// are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateJudge("judges.semantic", &cfg.Judges.Semantic)...)
	errs = append(errs, validateJudge("judges.rule_engine", &cfg.Judges.RuleEngine)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{"server.listen_address", fmt.Sprintf("invalid host:port: %v", err)})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must not be negative"})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{"server.max_header_bytes", "must not be negative"})
	}
	return errs
}

func validateJudge(prefix string, cfg *JudgeConfig) []FieldError {
	var errs []FieldError

	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{prefix + ".endpoint", "must not be empty"})
		return errs
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		errs = append(errs, FieldError{prefix + ".endpoint", fmt.Sprintf("invalid URL: %v", err)})
		return errs
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, FieldError{prefix + ".endpoint", fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)})
	}
	if u.Host == "" {
		errs = append(errs, FieldError{prefix + ".endpoint", "must include a host"})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{prefix + ".timeout", "must be positive"})
	}
	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite":
		if cfg.Path == "" {
			errs = append(errs, FieldError{"storage.path", "must not be empty for the sqlite backend"})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{"storage.backend", fmt.Sprintf("must be \"sqlite\" or \"memory\", got %q", cfg.Backend)})
	}

	if cfg.Retention.GraceDays > 0 && cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{"storage.retention.prune_schedule", fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.Logging.Level)})
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf("must be \"json\" or \"text\", got %q", cfg.Logging.Format)})
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{"telemetry.metrics.path", "must start with /"})
	}
	return errs
}
