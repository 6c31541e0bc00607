package review

import "fmt"

// ErrEmptyBatch is returned when a review request carries no rules.
// It is the only fatal validation failure; every other anomaly
// degrades to a diagnostic.
var ErrEmptyBatch = fmt.Errorf("review batch contains no rules")

// ClassificationAmbiguityError reports conflicting engine selectors
// inside one rule document. It is recorded as a diagnostic, never
// returned from Partition.
type ClassificationAmbiguityError struct {
	RuleID      int64
	Occurrences int
}

func (e *ClassificationAmbiguityError) Error() string {
	return fmt.Sprintf("rule %d: %d conflicting engine selector occurrences", e.RuleID, e.Occurrences)
}

// JudgeTransportError wraps a network-level failure talking to a judge
// service.
type JudgeTransportError struct {
	Judge string
	Cause error
}

func (e *JudgeTransportError) Error() string {
	return fmt.Sprintf("judge %s: transport failure: %v", e.Judge, e.Cause)
}

func (e *JudgeTransportError) Unwrap() error {
	return e.Cause
}

// JudgeResponseMalformedError reports a judge response body that could
// not be decoded into any expected shape. StatusCode and ByteLen
// describe the offending response so the failure can be traced without
// logging the whole body.
type JudgeResponseMalformedError struct {
	Judge      string
	StatusCode int
	ByteLen    int
	Raw        string
	Cause      error
}

func (e *JudgeResponseMalformedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("judge %s: malformed response (HTTP %d, %d bytes): %v", e.Judge, e.StatusCode, e.ByteLen, e.Cause)
	}
	return fmt.Sprintf("judge %s: malformed response: %v", e.Judge, e.Cause)
}

func (e *JudgeResponseMalformedError) Unwrap() error {
	return e.Cause
}

// JudgeStatusRejectedError reports a well-formed judge response whose
// envelope code or HTTP status signals rejection.
type JudgeStatusRejectedError struct {
	Judge      string
	StatusCode int
	Code       int64
	Message    string
}

func (e *JudgeStatusRejectedError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("judge %s: rejected with code %d: %s", e.Judge, e.Code, e.Message)
	}
	return fmt.Sprintf("judge %s: rejected with HTTP %d: %s", e.Judge, e.StatusCode, e.Message)
}

// PersistenceConflictError reports an upsert that found an existing
// record for the same (session, rule) key. Callers treat it as a
// successful no-op and record a diagnostic.
type PersistenceConflictError struct {
	SessionID string
	RuleID    int64
}

func (e *PersistenceConflictError) Error() string {
	return fmt.Sprintf("result for session %s rule %d already stored", e.SessionID, e.RuleID)
}
