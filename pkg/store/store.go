package store

import (
	"context"
	"time"

	"veritas-hq/minos/pkg/review"
)

// Store persists canonical rule results keyed by (session id, rule id).
type Store interface {
	// Save inserts a result. When a result for the same key already
	// exists the existing record is kept untouched and Save returns a
	// *review.PersistenceConflictError (which callers treat as a
	// successful no-op).
	Save(ctx context.Context, result review.CanonicalRuleResult) error

	// ListBySession returns a session's results ordered by rule index.
	// Soft-deleted sessions return ErrNotFound.
	ListBySession(ctx context.Context, sessionID string) ([]review.CanonicalRuleResult, error)

	// SessionSummary returns aggregate counts for a session.
	SessionSummary(ctx context.Context, sessionID string) (*SessionSummary, error)

	// DeleteSession soft-deletes every result of a session.
	DeleteSession(ctx context.Context, sessionID string) error

	// SetFeedback updates the user feedback on one stored result.
	SetFeedback(ctx context.Context, sessionID string, ruleID int64, feedback review.UserFeedback) error

	// PruneDeleted hard-deletes soft-deleted results older than the
	// cutoff and returns the number of rows removed.
	PruneDeleted(ctx context.Context, olderThan time.Time) (int64, error)

	// Count returns the number of live results.
	Count(ctx context.Context) (int64, error)

	// Close releases backend resources.
	Close() error
}

// summarize folds a session's results into aggregate counts. Shared
// by the backends so both report identical summaries.
func summarize(sessionID string, results []review.CanonicalRuleResult) *SessionSummary {
	summary := &SessionSummary{SessionID: sessionID, TotalRules: len(results)}
	for i, r := range results {
		if i == 0 || r.CreatedAt.Before(summary.CreatedAt) {
			summary.CreatedAt = r.CreatedAt
		}
		if summary.ContractID == "" {
			summary.ContractID = r.ContractID
		}
		switch r.ReviewResult {
		case review.ReviewPass:
			summary.Passed++
		case review.ReviewFail:
			summary.Failed++
		}
		switch r.RiskOrdinal {
		case review.RiskHigh:
			summary.HighRisk++
		case review.RiskMedium:
			summary.MediumRisk++
		case review.RiskLow:
			summary.LowRisk++
		}
	}
	return summary
}

// SessionSummary aggregates a session's results.
type SessionSummary struct {
	SessionID  string    `json:"sessionId"`
	ContractID string    `json:"contractId"`
	TotalRules int       `json:"totalRules"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	HighRisk   int       `json:"highRisk"`
	MediumRisk int       `json:"mediumRisk"`
	LowRisk    int       `json:"lowRisk"`
	CreatedAt  time.Time `json:"createdAt"`
}
