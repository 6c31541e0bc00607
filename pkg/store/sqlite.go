package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"veritas-hq/minos/pkg/review"
)

// SQLiteStore is the production Store backend. A single database file
// in WAL mode serves both the review handlers and the retention
// pruner.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the result database at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	// SQLite allows one writer; more connections just contend.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger.With("component", "store.sqlite"),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Info("result store opened", "path", path)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return NewStorageError("sqlite", "set WAL mode", err)
	}
	if _, err := s.db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return NewStorageError("sqlite", "set busy timeout", err)
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create schema", err)
	}

	var version int
	err := s.db.QueryRow("SELECT version FROM schema_info LIMIT 1").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.Exec("INSERT INTO schema_info (version) VALUES (?)", SchemaVersion); err != nil {
			return NewStorageError("sqlite", "record schema version", err)
		}
	case err != nil:
		return NewStorageError("sqlite", "read schema version", err)
	case version != SchemaVersion:
		return NewStorageError("sqlite", "verify schema version",
			fmt.Errorf("database has schema version %d, expected %d", version, SchemaVersion))
	}
	return nil
}

// Save inserts a result. INSERT OR IGNORE leaves an existing row for
// the same (session, rule) key untouched; the zero-rows-affected case
// is reported as a PersistenceConflictError so callers can log the
// skip.
func (s *SQLiteStore) Save(ctx context.Context, result review.CanonicalRuleResult) error {
	verbatim, err := json.Marshal(result.VerbatimTextList)
	if err != nil {
		return NewStorageError("sqlite", "encode verbatim text", err)
	}
	matched, err := json.Marshal(result.MatchedContent)
	if err != nil {
		return NewStorageError("sqlite", "encode matched content", err)
	}
	suggestions, err := json.Marshal(result.Suggestions)
	if err != nil {
		return NewStorageError("sqlite", "encode suggestions", err)
	}
	issues, err := json.Marshal(result.Issues)
	if err != nil {
		return NewStorageError("sqlite", "encode issues", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO rule_results (
			session_id, contract_id, rule_id, rule_index, rule_name,
			risk_level, risk_ordinal, risk_attribution_id, risk_attribution_name,
			rule_group_id, rule_group_name, review_result, rule_confirm_result,
			verbatim_text_list, matched_content, suggestions, issues,
			revise_opinion, analysis, confidence_score, user_feedback, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.SessionID, result.ContractID, result.RuleID, result.RuleIndex, result.RuleName,
		result.RiskLevel, result.RiskOrdinal, result.RiskAttributionID, result.RiskAttributionName,
		result.RuleGroupID, result.RuleGroupName, string(result.ReviewResult), result.RuleConfirmResult,
		string(verbatim), string(matched), string(suggestions), string(issues),
		result.ReviseOpinion, result.Analysis, result.ConfidenceScore, string(result.UserFeedback),
		result.CreatedAt.UTC(),
	)
	if err != nil {
		return NewStorageError("sqlite", "save result", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return NewStorageError("sqlite", "save result", err)
	}
	if affected == 0 {
		s.logger.InfoContext(ctx, "duplicate result skipped",
			"session_id", result.SessionID, "rule_id", result.RuleID)
		return &review.PersistenceConflictError{SessionID: result.SessionID, RuleID: result.RuleID}
	}
	return nil
}

// ListBySession returns a session's live results ordered by rule
// index.
func (s *SQLiteStore) ListBySession(ctx context.Context, sessionID string) ([]review.CanonicalRuleResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, contract_id, rule_id, rule_index, rule_name,
			risk_level, risk_ordinal, risk_attribution_id, risk_attribution_name,
			rule_group_id, rule_group_name, review_result, rule_confirm_result,
			verbatim_text_list, matched_content, suggestions, issues,
			revise_opinion, analysis, confidence_score, user_feedback, created_at
		FROM rule_results
		WHERE session_id = ? AND is_deleted = 0
		ORDER BY rule_index ASC`,
		sessionID,
	)
	if err != nil {
		return nil, NewStorageError("sqlite", "list session", err)
	}
	defer rows.Close()

	var results []review.CanonicalRuleResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan result", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list session", err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results, nil
}

// SessionSummary aggregates a session's live results.
func (s *SQLiteStore) SessionSummary(ctx context.Context, sessionID string) (*SessionSummary, error) {
	results, err := s.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return summarize(sessionID, results), nil
}

// DeleteSession soft-deletes a session's results.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE rule_results SET is_deleted = 1 WHERE session_id = ? AND is_deleted = 0",
		sessionID)
	if err != nil {
		return NewStorageError("sqlite", "delete session", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return NewStorageError("sqlite", "delete session", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.logger.InfoContext(ctx, "session soft-deleted", "session_id", sessionID, "results", affected)
	return nil
}

// SetFeedback updates the feedback on one live result.
func (s *SQLiteStore) SetFeedback(ctx context.Context, sessionID string, ruleID int64, feedback review.UserFeedback) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE rule_results SET user_feedback = ? WHERE session_id = ? AND rule_id = ? AND is_deleted = 0",
		string(feedback), sessionID, ruleID)
	if err != nil {
		return NewStorageError("sqlite", "set feedback", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return NewStorageError("sqlite", "set feedback", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneDeleted hard-deletes soft-deleted results older than olderThan.
func (s *SQLiteStore) PruneDeleted(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM rule_results WHERE is_deleted = 1 AND created_at < ?",
		olderThan.UTC())
	if err != nil {
		return 0, NewStorageError("sqlite", "prune", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "prune", err)
	}
	return removed, nil
}

// Count returns the number of live results.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rule_results WHERE is_deleted = 0").Scan(&count)
	if err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanResult(rows *sql.Rows) (review.CanonicalRuleResult, error) {
	var (
		result                                 review.CanonicalRuleResult
		reviewResult, feedback                 string
		verbatim, matched, suggestions, issues string
	)
	err := rows.Scan(
		&result.SessionID, &result.ContractID, &result.RuleID, &result.RuleIndex, &result.RuleName,
		&result.RiskLevel, &result.RiskOrdinal, &result.RiskAttributionID, &result.RiskAttributionName,
		&result.RuleGroupID, &result.RuleGroupName, &reviewResult, &result.RuleConfirmResult,
		&verbatim, &matched, &suggestions, &issues,
		&result.ReviseOpinion, &result.Analysis, &result.ConfidenceScore, &feedback, &result.CreatedAt,
	)
	if err != nil {
		return result, err
	}
	result.ReviewResult = review.ReviewResult(reviewResult)
	result.UserFeedback = review.UserFeedback(feedback)
	for _, col := range []struct {
		data string
		dest *review.StringList
	}{
		{verbatim, &result.VerbatimTextList},
		{matched, &result.MatchedContent},
		{suggestions, &result.Suggestions},
		{issues, &result.Issues},
	} {
		if err := json.Unmarshal([]byte(col.data), col.dest); err != nil {
			return result, fmt.Errorf("decode list column: %w", err)
		}
	}
	return result, nil
}
