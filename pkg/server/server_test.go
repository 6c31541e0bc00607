package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"veritas-hq/minos/pkg/config"
	"veritas-hq/minos/pkg/pipeline"
	"veritas-hq/minos/pkg/review"
	"veritas-hq/minos/pkg/store"
	"veritas-hq/minos/pkg/telemetry/metrics"
)

type stubRunner struct{}

func (stubRunner) Run(_ context.Context, batch pipeline.Batch, sink pipeline.Sink) ([]review.CanonicalRuleResult, error) {
	if len(batch.Rules) == 0 {
		return nil, review.ErrEmptyBatch
	}
	results := make([]review.CanonicalRuleResult, 0, len(batch.Rules))
	for i, rule := range batch.Rules {
		results = append(results, review.CanonicalRuleResult{
			RuleID:       rule.RuleID,
			RuleIndex:    i,
			SessionID:    batch.SessionID,
			ReviewResult: review.ReviewPass,
		})
	}
	_ = sink.Emit(pipeline.Event{Event: pipeline.EventBatchCompleted, Data: pipeline.BatchCompletedData{
		SessionID: batch.SessionID,
		Status:    "completed",
		Results:   results,
	}})
	return results, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	collector := metrics.NewCollector(metrics.Config{Namespace: "minos_server_test"})
	return NewServer(&cfg.Server, &cfg.Telemetry.Metrics, Dependencies{
		Runner:    stubRunner{},
		Store:     store.NewMemoryStore(),
		Collector: collector,
	})
}

func TestServerRoutes(t *testing.T) {
	handler := newTestServer(t).Handler()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"review", http.MethodPost, "/api/v1/review", `{"session_id":"s","rules":[{"ruleId":1}]}`, http.StatusOK},
		{"review empty batch", http.MethodPost, "/api/v1/review", `{"rules":[]}`, http.StatusBadRequest},
		{"missing session", http.MethodGet, "/api/v1/sessions/none", "", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/v2/other", "", http.StatusNotFound},
		{"wrong method", http.MethodGet, "/api/v1/review", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestServerAttachesRequestID(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestServerStreamEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	body := `{"session_id":"s","rules":[{"ruleId":1}]}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/review/stream", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "batch_completed") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
