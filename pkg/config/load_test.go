package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minos.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
judges:
  semantic:
    endpoint: http://semantic.internal:8000
  rule_engine:
    endpoint: http://engine.internal:9000
`

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Judges.Semantic.Endpoint != "http://semantic.internal:8000" {
		t.Errorf("semantic endpoint = %q", cfg.Judges.Semantic.Endpoint)
	}
	if cfg.Judges.Semantic.Timeout != DefaultSemanticTimeout {
		t.Errorf("defaults not applied: %v", cfg.Judges.Semantic.Timeout)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("storage backend = %q", cfg.Storage.Backend)
	}
}

func TestLoadConfigFullFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: 0.0.0.0:9090
  request_timeout: 45s
judges:
  semantic:
    endpoint: http://semantic.internal:8000
    timeout: 90s
    headers:
      Authorization: Bearer token
  rule_engine:
    endpoint: https://engine.internal:9000
storage:
  backend: memory
  retention:
    grace_days: 7
audit:
  enabled: false
  path: /tmp/audit.db
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9090" || cfg.Server.RequestTimeout != 45*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Judges.Semantic.Timeout != 90*time.Second {
		t.Errorf("semantic timeout = %v", cfg.Judges.Semantic.Timeout)
	}
	if cfg.Judges.Semantic.Headers["Authorization"] != "Bearer token" {
		t.Errorf("headers = %v", cfg.Judges.Semantic.Headers)
	}
	if cfg.Storage.Backend != "memory" || cfg.Storage.Retention.GraceDays != 7 {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Audit.Enabled {
		t.Error("audit should be disabled")
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing file", ""},
		{"malformed yaml", "judges: ["},
		{"fails validation", "judges:\n  semantic:\n    endpoint: ''\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.yaml")
			if tt.content != "" {
				path = writeConfigFile(t, tt.content)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig should fail")
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)

	t.Setenv("MINOS_SEMANTIC_ENDPOINT", "http://override.internal:8100")
	t.Setenv("MINOS_SEMANTIC_TIMEOUT", "15s")
	t.Setenv("MINOS_STORAGE_BACKEND", "memory")
	t.Setenv("MINOS_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}
	if cfg.Judges.Semantic.Endpoint != "http://override.internal:8100" {
		t.Errorf("endpoint override not applied: %q", cfg.Judges.Semantic.Endpoint)
	}
	if cfg.Judges.Semantic.Timeout != 15*time.Second {
		t.Errorf("timeout override not applied: %v", cfg.Judges.Semantic.Timeout)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("backend override not applied: %q", cfg.Storage.Backend)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("log level override not applied: %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverridesRevalidates(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)
	t.Setenv("MINOS_STORAGE_BACKEND", "postgres")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("invalid override should fail validation")
	}
}
