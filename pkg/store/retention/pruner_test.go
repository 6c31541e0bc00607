package retention

import (
	"context"
	"testing"
	"time"

	"veritas-hq/minos/pkg/review"
	"veritas-hq/minos/pkg/store"
)

func seedDeletedSession(t *testing.T, s store.Store, sessionID string, age time.Duration) {
	t.Helper()
	result := review.CanonicalRuleResult{
		SessionID:    sessionID,
		RuleID:       1,
		ReviewResult: review.ReviewPass,
		CreatedAt:    time.Now().UTC().Add(-age),
	}
	if err := s.Save(context.Background(), result); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.DeleteSession(context.Background(), sessionID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
}

func TestPruneRemovesExpiredSessions(t *testing.T) {
	s := store.NewMemoryStore()
	seedDeletedSession(t, s, "old", 40*24*time.Hour)
	seedDeletedSession(t, s, "recent", 1*24*time.Hour)

	pruner := NewPruner(s, &Config{GraceDays: 30})
	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1 (only the expired session)", removed)
	}
}

func TestPruneDisabled(t *testing.T) {
	s := store.NewMemoryStore()
	seedDeletedSession(t, s, "old", 400*24*time.Hour)

	pruner := NewPruner(s, &Config{GraceDays: 0})
	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 when disabled", removed)
	}
}

func TestPruneDefaults(t *testing.T) {
	pruner := NewPruner(store.NewMemoryStore(), nil)
	if pruner.Config().GraceDays != 30 {
		t.Errorf("GraceDays = %d, want 30", pruner.Config().GraceDays)
	}
	if pruner.Config().PruneSchedule == "" {
		t.Error("default schedule missing")
	}
}
