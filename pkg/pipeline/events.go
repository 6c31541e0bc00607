package pipeline

import (
	"time"

	"veritas-hq/minos/pkg/review"
)

// EventType identifies a progress event.
type EventType string

const (
	// EventRuleCompleted reports one confirmed rule.
	EventRuleCompleted EventType = "rule_completed"
	// EventBatchCompleted reports the finished batch with all results.
	EventBatchCompleted EventType = "batch_completed"
	// EventError reports a fatal batch failure.
	EventError EventType = "error"
)

// Event is the wire shape of one progress event. Timestamp is Unix
// seconds with fractional precision.
type Event struct {
	Event     EventType `json:"event"`
	Timestamp float64   `json:"timestamp"`
	Data      any       `json:"data"`
}

// RuleCompletedData is the payload of a rule_completed event.
type RuleCompletedData struct {
	SessionID      string                     `json:"session_id"`
	Status         string                     `json:"status"`
	CompletedRule  review.CanonicalRuleResult `json:"completed_rule"`
	ProcessedCount int                        `json:"processed_count"`
	TotalRules     int                        `json:"total_rules"`
	Message        string                     `json:"message"`
}

// BatchCompletedData is the payload of the final batch_completed
// event.
type BatchCompletedData struct {
	SessionID   string                       `json:"session_id"`
	Status      string                       `json:"status"`
	Results     []review.CanonicalRuleResult `json:"results"`
	TotalRules  int                          `json:"total_rules"`
	Diagnostics []review.Diagnostic          `json:"diagnostics"`
	Engine      EngineReport                 `json:"engine"`
}

// EngineReport status values for calls that did not produce an error.
const (
	EngineStatusOK         = "ok"
	EngineStatusNotInvoked = "not_invoked"
)

// EngineReport records how the rule-engine leg of a batch went:
// whether the engine was called at all, how many rules were routed to
// it, and the raw outcome (EngineStatusOK, EngineStatusNotInvoked, or
// the call's error text).
type EngineReport struct {
	Invoked     bool   `json:"invoked"`
	RoutedRules int    `json:"routed_rules"`
	Status      string `json:"status"`
}

// ErrorData is the payload of an error event.
type ErrorData struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

// Sink receives progress events. Implementations must be safe for use
// from a single goroutine at a time; the emitter serializes calls.
type Sink interface {
	Emit(event Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event Event) error

// Emit implements Sink.
func (f SinkFunc) Emit(event Event) error {
	return f(event)
}

func newEvent(eventType EventType, data any) Event {
	return Event{
		Event:     eventType,
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
		Data:      data,
	}
}
