// Package handlers implements the HTTP handlers for the review API.
//
// Endpoints:
//
//	POST   /api/v1/review/stream                       run a batch, stream SSE progress events
//	POST   /api/v1/review                              run a batch, respond once with all results
//	GET    /api/v1/sessions/{id}                       stored results for a session
//	GET    /api/v1/sessions/{id}/summary               aggregate counts for a session
//	DELETE /api/v1/sessions/{id}                       soft-delete a session
//	POST   /api/v1/results/{sessionId}/{ruleId}/feedback  record user feedback
//	GET    /health                                     liveness and judge health
//
// The streaming endpoint emits Server-Sent Events, one rule_completed
// event per rule in the request order and a final batch_completed
// event:
//
//	data: {"event":"rule_completed","timestamp":1756600000.123,"data":{...}}
//
//	data: {"event":"batch_completed","timestamp":1756600001.456,"data":{...}}
package handlers
