package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"veritas-hq/minos/pkg/pipeline"
	"veritas-hq/minos/pkg/review"
)

// fakeRunner emits a scripted event sequence and returns fixed
// results.
type fakeRunner struct {
	results []review.CanonicalRuleResult
	err     error
}

func (f *fakeRunner) Run(_ context.Context, batch pipeline.Batch, sink pipeline.Sink) ([]review.CanonicalRuleResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i, res := range f.results {
		_ = sink.Emit(pipeline.Event{
			Event:     pipeline.EventRuleCompleted,
			Timestamp: float64(1756600000 + i),
			Data: pipeline.RuleCompletedData{
				SessionID:      batch.SessionID,
				Status:         "processing",
				CompletedRule:  res,
				ProcessedCount: i + 1,
				TotalRules:     len(f.results),
			},
		})
	}
	_ = sink.Emit(pipeline.Event{
		Event:     pipeline.EventBatchCompleted,
		Timestamp: 1756600100,
		Data: pipeline.BatchCompletedData{
			SessionID:   batch.SessionID,
			Status:      "completed",
			Results:     f.results,
			TotalRules:  len(f.results),
			Diagnostics: []review.Diagnostic{{Kind: review.DiagJudgeFailure, Message: "semantic judge unavailable"}},
			Engine:      pipeline.EngineReport{Invoked: true, RoutedRules: 1, Status: pipeline.EngineStatusOK},
		},
	})
	return f.results, nil
}

func sampleResults() []review.CanonicalRuleResult {
	return []review.CanonicalRuleResult{
		{RuleID: 1, RuleIndex: 0, SessionID: "sess", ReviewResult: review.ReviewPass},
		{RuleID: 2, RuleIndex: 1, SessionID: "sess", ReviewResult: review.ReviewFail},
	}
}

func TestStreamReviewHandler(t *testing.T) {
	handler := NewStreamReviewHandler(&fakeRunner{results: sampleResults()}, nil)

	body := `{"session_id":"sess","contract_id":"c-1","rules":[{"ruleId":1},{"ruleId":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/stream", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type = %q", ct)
	}

	frames := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	if len(frames) != 3 {
		t.Fatalf("frames = %d, want 2 rule_completed + 1 batch_completed", len(frames))
	}
	for _, frame := range frames {
		if !strings.HasPrefix(frame, "data: ") {
			t.Fatalf("frame %q is not an SSE data frame", frame)
		}
		var event struct {
			Event string `json:"event"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &event); err != nil {
			t.Fatalf("frame payload is not JSON: %v", err)
		}
	}
	if !strings.Contains(frames[2], "batch_completed") {
		t.Errorf("final frame = %q", frames[2])
	}
}

func TestStreamReviewHandlerRejectsMalformedBody(t *testing.T) {
	handler := NewStreamReviewHandler(&fakeRunner{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/stream", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReviewHandler(t *testing.T) {
	handler := NewReviewHandler(&fakeRunner{results: sampleResults()}, nil)

	body := `{"session_id":"sess","rules":[{"ruleId":1},{"ruleId":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionID   string                       `json:"session_id"`
		Results     []review.CanonicalRuleResult `json:"results"`
		TotalRules  int                          `json:"total_rules"`
		Diagnostics []review.Diagnostic          `json:"diagnostics"`
		Engine      pipeline.EngineReport        `json:"engine"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != "sess" || len(resp.Results) != 2 || resp.TotalRules != 2 {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Diagnostics) != 1 {
		t.Errorf("diagnostics = %+v, want the batch_completed diagnostics", resp.Diagnostics)
	}
	if !resp.Engine.Invoked || resp.Engine.Status != pipeline.EngineStatusOK {
		t.Errorf("engine = %+v, want the batch_completed engine report", resp.Engine)
	}
}

func TestReviewHandlerEmptyBatch(t *testing.T) {
	handler := NewReviewHandler(&fakeRunner{err: review.ErrEmptyBatch}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/review", strings.NewReader(`{"rules":[]}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "empty_batch") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
