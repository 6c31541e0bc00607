package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"veritas-hq/minos/pkg/audit"
	"veritas-hq/minos/pkg/review"
	"veritas-hq/minos/pkg/store"
)

// SessionsHandler serves stored review sessions: listing results,
// session summaries, soft deletion, and per-result user feedback.
type SessionsHandler struct {
	store  store.Store
	trail  *audit.Trail
	logger *slog.Logger
}

// NewSessionsHandler creates a sessions handler. trail may be nil.
func NewSessionsHandler(st store.Store, trail *audit.Trail, logger *slog.Logger) *SessionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionsHandler{store: st, trail: trail, logger: logger}
}

// Get responds with all results for a session in rule order.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	results, err := h.store.ListBySession(r.Context(), sessionID)
	if err != nil {
		h.writeStoreError(w, sessionID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"results":    results,
	})
}

// Summary responds with aggregate counts for a session.
func (h *SessionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	summary, err := h.store.SessionSummary(r.Context(), sessionID)
	if err != nil {
		h.writeStoreError(w, sessionID, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Delete soft-deletes all results for a session.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if err := h.store.DeleteSession(r.Context(), sessionID); err != nil {
		h.writeStoreError(w, sessionID, err)
		return
	}

	h.trail.Record(r.Context(), audit.Entry{
		Kind:      audit.KindSessionDeleted,
		SessionID: sessionID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"status":     "deleted",
	})
}

// Feedback records a user's like/dislike verdict on a stored result.
func (h *SessionsHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	ruleID, err := strconv.ParseInt(r.PathValue("ruleId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_rule_id", fmt.Sprintf("rule id must be an integer: %v", err))
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("malformed request body: %v", err))
		return
	}
	switch req.Feedback {
	case review.FeedbackNone, review.FeedbackLike, review.FeedbackDislike:
	default:
		writeError(w, http.StatusBadRequest, "invalid_feedback",
			fmt.Sprintf("feedback must be one of none, like, dislike; got %q", req.Feedback))
		return
	}

	if err := h.store.SetFeedback(r.Context(), sessionID, ruleID, req.Feedback); err != nil {
		h.writeStoreError(w, sessionID, err)
		return
	}

	h.trail.Record(r.Context(), audit.Entry{
		Kind:      audit.KindFeedback,
		SessionID: sessionID,
		RuleID:    ruleID,
		Detail:    map[string]any{"feedback": string(req.Feedback)},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"rule_id":    ruleID,
		"feedback":   req.Feedback,
	})
}

func (h *SessionsHandler) writeStoreError(w http.ResponseWriter, sessionID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("session %q not found", sessionID))
		return
	}
	h.logger.Error("store operation failed", "session_id", sessionID, "error", err)
	writeError(w, http.StatusInternalServerError, "storage_error", "storage operation failed")
}
