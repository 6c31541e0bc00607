package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"veritas-hq/minos/pkg/store"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// GraceDays is how long soft-deleted sessions stay recoverable
	// before the pruner removes them. 0 disables pruning.
	GraceDays int

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM).
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		GraceDays:     30,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner removes soft-deleted results that have outlived the grace
// period.
type Pruner struct {
	store  store.Store
	config *Config
	logger *slog.Logger
}

// NewPruner creates a retention pruner. A nil config uses defaults.
func NewPruner(s store.Store, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		store:  s,
		config: config,
		logger: slog.Default().With("component", "store.retention"),
	}
}

// Config returns the pruner's configuration.
func (p *Pruner) Config() *Config {
	return p.config
}

// Prune hard-deletes soft-deleted results older than the grace period
// and returns the number of rows removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.GraceDays <= 0 {
		p.logger.Debug("retention disabled, skipping prune")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.GraceDays)
	removed, err := p.store.PruneDeleted(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune soft-deleted results: %w", err)
	}

	if removed > 0 {
		p.logger.Info("retention pruning completed",
			"removed", removed,
			"grace_days", p.config.GraceDays)
	} else {
		p.logger.Debug("no results pruned", "grace_days", p.config.GraceDays)
	}
	return removed, nil
}
