// Package judges contains the HTTP plumbing shared by the two upstream
// judge clients: the semantic judge (streaming, pkg/judges/semantic)
// and the deterministic rule engine (batch, pkg/judges/ruleengine).
//
// HTTPClient owns the pooled transport, request construction, and
// health tracking. Failures map onto the review error taxonomy
// (review.JudgeTransportError and friends) so callers can branch on
// error type without caring which judge produced it.
//
// Both judge clients are designed to degrade rather than fail: the
// orchestrator in pkg/pipeline converts every judge error into either
// an empty semantic result set or a deterministic-track fallback.
package judges
