// Package pipeline orchestrates the confirmation of a rule batch.
//
// Orchestrator.Run partitions the rules between the semantic judge and
// the deterministic rule engine, issues both calls concurrently,
// normalizes the answers into canonical records, persists each record,
// and emits progress events through a Sink:
//
//	one rule_completed per rule, in the original request order,
//	then exactly one batch_completed carrying all results, the
//	batch diagnostics, and a report on the rule-engine call.
//
// Ordering is preserved by a reorder buffer keyed on the rule's
// request index, so semantic results flush as soon as their turn
// comes even while the rule engine is still working. Engine-routed
// rules are normalized only once the semantic result set exists:
// when the engine call fails, the fallback policy judges each of its
// rules by the evidence the semantic judge found for it.
//
// The only fatal input is an empty rule list. Judge failures,
// malformed responses, classification ambiguities, and persistence
// conflicts all degrade to diagnostics on the batch_completed event.
//
// Cancellation of the caller's context stops event emission, but
// in-flight judge calls run to completion under their own timeouts
// and finished results are still persisted.
package pipeline
