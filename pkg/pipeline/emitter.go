package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"veritas-hq/minos/pkg/review"
)

// emitter delivers rule_completed events in the original request
// order regardless of the order results arrive in. Results for a rule
// whose turn has not come yet wait in a reorder buffer keyed by
// request index; each arrival flushes the longest ready prefix.
//
// Once the caller's context is canceled the emitter keeps accepting
// results (so both judge tracks can finish their bookkeeping) but
// stops writing to the sink.
type emitter struct {
	ctx       context.Context
	sink      Sink
	sessionID string
	total     int
	logger    *slog.Logger

	mu        sync.Mutex
	next      int
	processed int
	buffer    map[int]review.CanonicalRuleResult
	emitted   []review.CanonicalRuleResult
}

func newEmitter(ctx context.Context, sink Sink, sessionID string, total int, logger *slog.Logger) *emitter {
	return &emitter{
		ctx:       ctx,
		sink:      sink,
		sessionID: sessionID,
		total:     total,
		logger:    logger,
		buffer:    make(map[int]review.CanonicalRuleResult),
	}
}

// complete hands one finished rule to the emitter. Safe for
// concurrent use by both judge tracks.
func (e *emitter) complete(result review.CanonicalRuleResult) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buffer[result.RuleIndex] = result
	for {
		ready, ok := e.buffer[e.next]
		if !ok {
			return
		}
		delete(e.buffer, e.next)
		e.next++
		e.processed++
		e.emitted = append(e.emitted, ready)
		e.emitLocked(newEvent(EventRuleCompleted, RuleCompletedData{
			SessionID:      e.sessionID,
			Status:         "processing",
			CompletedRule:  ready,
			ProcessedCount: e.processed,
			TotalRules:     e.total,
			Message:        "rule confirmed",
		}))
	}
}

// finish emits the final batch_completed event and returns the
// results in request order.
func (e *emitter) finish(diagnostics []review.Diagnostic, engine EngineReport) []review.CanonicalRuleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if diagnostics == nil {
		diagnostics = []review.Diagnostic{}
	}
	if engine.Status == "" {
		engine.Status = EngineStatusNotInvoked
	}
	e.emitLocked(newEvent(EventBatchCompleted, BatchCompletedData{
		SessionID:   e.sessionID,
		Status:      "completed",
		Results:     e.emitted,
		TotalRules:  e.total,
		Diagnostics: diagnostics,
		Engine:      engine,
	}))
	return e.emitted
}

// emitLocked writes one event unless the caller context is done.
// Callers hold e.mu, which serializes sink access.
func (e *emitter) emitLocked(event Event) {
	select {
	case <-e.ctx.Done():
		e.logger.Debug("emission skipped, caller gone",
			"event", string(event.Event),
			"session_id", e.sessionID)
		return
	default:
	}
	if err := e.sink.Emit(event); err != nil {
		e.logger.Warn("event emission failed",
			"event", string(event.Event),
			"session_id", e.sessionID,
			"error", err)
	}
}
