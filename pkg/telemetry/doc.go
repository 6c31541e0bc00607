// Package telemetry groups the observability subpackages for Minos.
//
// # Components
//
//   - logging: structured logging built on log/slog with context-carried
//     review fields (request, session, contract, judge)
//   - metrics: Prometheus metrics for judge calls, review batches, and
//     the result store
//
// Subpackages are wired independently; neither imports the other. The
// logging package installs a process-wide default logger, while the
// metrics package hands its Collector to the pipeline and the HTTP
// server explicitly.
package telemetry
