package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"veritas-hq/minos/pkg/review"
)

// MemoryStore is an in-memory Store backend intended for tests and
// development mode. It honors the same duplicate and soft-delete
// semantics as SQLiteStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[int64]*memoryRecord
}

type memoryRecord struct {
	result  review.CanonicalRuleResult
	deleted bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[int64]*memoryRecord),
	}
}

// Save inserts a result, skipping duplicates.
func (m *MemoryStore) Save(_ context.Context, result review.CanonicalRuleResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[result.SessionID]
	if !ok {
		session = make(map[int64]*memoryRecord)
		m.sessions[result.SessionID] = session
	}
	if _, exists := session[result.RuleID]; exists {
		return &review.PersistenceConflictError{SessionID: result.SessionID, RuleID: result.RuleID}
	}
	session[result.RuleID] = &memoryRecord{result: result}
	return nil
}

// ListBySession returns a session's live results ordered by rule
// index.
func (m *MemoryStore) ListBySession(_ context.Context, sessionID string) ([]review.CanonicalRuleResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	var results []review.CanonicalRuleResult
	for _, rec := range session {
		if !rec.deleted {
			results = append(results, rec.result)
		}
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	sortByRuleIndex(results)
	return results, nil
}

// SessionSummary aggregates a session's live results.
func (m *MemoryStore) SessionSummary(ctx context.Context, sessionID string) (*SessionSummary, error) {
	results, err := m.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return summarize(sessionID, results), nil
}

// DeleteSession soft-deletes a session's results.
func (m *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	deleted := 0
	for _, rec := range session {
		if !rec.deleted {
			rec.deleted = true
			deleted++
		}
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFeedback updates the feedback on one live result.
func (m *MemoryStore) SetFeedback(_ context.Context, sessionID string, ruleID int64, feedback review.UserFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	rec, ok := session[ruleID]
	if !ok || rec.deleted {
		return ErrNotFound
	}
	rec.result.UserFeedback = feedback
	return nil
}

// PruneDeleted hard-deletes soft-deleted results older than olderThan.
func (m *MemoryStore) PruneDeleted(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for sessionID, session := range m.sessions {
		for ruleID, rec := range session {
			if rec.deleted && rec.result.CreatedAt.Before(olderThan) {
				delete(session, ruleID)
				removed++
			}
		}
		if len(session) == 0 {
			delete(m.sessions, sessionID)
		}
	}
	return removed, nil
}

// Count returns the number of live results.
func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, session := range m.sessions {
		for _, rec := range session {
			if !rec.deleted {
				count++
			}
		}
	}
	return count, nil
}

// Close is a no-op for the memory backend.
func (m *MemoryStore) Close() error {
	return nil
}

func sortByRuleIndex(results []review.CanonicalRuleResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].RuleIndex < results[j].RuleIndex
	})
}
