package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"veritas-hq/minos/pkg/judges"
	"veritas-hq/minos/pkg/pipeline"
	"veritas-hq/minos/pkg/review"
)

// Runner executes review batches. Implemented by pipeline.Orchestrator.
type Runner interface {
	Run(ctx context.Context, batch pipeline.Batch, sink pipeline.Sink) ([]review.CanonicalRuleResult, error)
}

// JudgeStatus exposes the health of a judge backend.
type JudgeStatus interface {
	Name() string
	Healthy() bool
	Health() judges.Health
}

// reviewRequest is the request body for both review endpoints.
type reviewRequest struct {
	SessionID   string                  `json:"session_id"`
	ContractID  string                  `json:"contract_id"`
	ReviewStage string                  `json:"review_stage"`
	Rules       []review.RuleDefinition `json:"rules"`
}

// feedbackRequest is the request body for the feedback endpoint.
type feedbackRequest struct {
	Feedback review.UserFeedback `json:"feedback"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
