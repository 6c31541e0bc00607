// Package retention hard-deletes soft-deleted review sessions after a
// grace period.
//
// DeleteSession on the store only flags results as deleted so a
// session stays recoverable; the Pruner removes flagged rows once they
// are older than the configured grace window. A cron Scheduler runs
// the pruner unattended:
//
//	pruner := retention.NewPruner(store, nil)
//	scheduler := retention.NewScheduler(pruner)
//	scheduler.Start(ctx) // e.g. "0 3 * * *" — daily at 3 AM
package retention
