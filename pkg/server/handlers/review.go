package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"veritas-hq/minos/pkg/pipeline"
	"veritas-hq/minos/pkg/review"
)

// StreamReviewHandler runs a review batch and streams progress events
// to the client as Server-Sent Events. One rule_completed event is
// written per rule, in the request order, followed by a single
// batch_completed event carrying the full result set.
type StreamReviewHandler struct {
	runner Runner
	logger *slog.Logger
}

// NewStreamReviewHandler creates a streaming review handler.
func NewStreamReviewHandler(runner Runner, logger *slog.Logger) *StreamReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamReviewHandler{runner: runner, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *StreamReviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("malformed request body: %v", err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sink := &sseSink{w: w, flusher: flusher}
	_, err := h.runner.Run(r.Context(), pipeline.Batch{
		SessionID:   req.SessionID,
		ContractID:  req.ContractID,
		ReviewStage: req.ReviewStage,
		Rules:       req.Rules,
	}, sink)
	if err != nil {
		// The pipeline already delivered an error event over the
		// stream; nothing more can be sent on this connection.
		h.logger.Warn("streaming review failed",
			"session_id", req.SessionID,
			"error", err)
	}
}

// sseSink writes pipeline events as Server-Sent Events. Emit is called
// from the pipeline's emitter under its lock, so writes are already
// serialized.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseSink) Emit(event pipeline.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// ReviewHandler runs a review batch and responds with the complete
// result set once all rules are confirmed. It exists for callers that
// cannot consume an event stream.
type ReviewHandler struct {
	runner Runner
	logger *slog.Logger
}

// NewReviewHandler creates a synchronous review handler.
func NewReviewHandler(runner Runner, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{runner: runner, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *ReviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("malformed request body: %v", err))
		return
	}

	sink := &captureSink{}
	results, err := h.runner.Run(r.Context(), pipeline.Batch{
		SessionID:   req.SessionID,
		ContractID:  req.ContractID,
		ReviewStage: req.ReviewStage,
		Rules:       req.Rules,
	}, sink)
	if err != nil {
		if errors.Is(err, review.ErrEmptyBatch) {
			writeError(w, http.StatusBadRequest, "empty_batch", "review request contains no rules")
			return
		}
		writeError(w, http.StatusInternalServerError, "review_failed", err.Error())
		return
	}

	if results == nil {
		results = []review.CanonicalRuleResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":  sessionID(results, req.SessionID),
		"results":     results,
		"total_rules": len(req.Rules),
		"diagnostics": sink.diagnostics(),
		"engine":      sink.engine(),
	})
}

func sessionID(results []review.CanonicalRuleResult, fallback string) string {
	if len(results) > 0 {
		return results[0].SessionID
	}
	return fallback
}

// captureSink retains the final batch_completed payload so the
// synchronous handler can report diagnostics.
type captureSink struct {
	mu    sync.Mutex
	final *pipeline.BatchCompletedData
}

func (s *captureSink) Emit(event pipeline.Event) error {
	if event.Event != pipeline.EventBatchCompleted {
		return nil
	}
	data, ok := event.Data.(pipeline.BatchCompletedData)
	if !ok {
		return nil
	}
	s.mu.Lock()
	s.final = &data
	s.mu.Unlock()
	return nil
}

func (s *captureSink) diagnostics() []review.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.final == nil || s.final.Diagnostics == nil {
		return []review.Diagnostic{}
	}
	return s.final.Diagnostics
}

func (s *captureSink) engine() pipeline.EngineReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.final == nil {
		return pipeline.EngineReport{Status: pipeline.EngineStatusNotInvoked}
	}
	return s.final.Engine
}
