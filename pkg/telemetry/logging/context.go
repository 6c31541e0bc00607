package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// SessionKey is the context key for review session identifiers.
	SessionKey contextKey = "session_id"

	// ContractKey is the context key for contract identifiers.
	ContractKey contextKey = "contract_id"

	// JudgeKey is the context key for judge names.
	JudgeKey contextKey = "judge"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithSession adds a review session identifier to the context.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionKey, sessionID)
}

// GetSession retrieves the session identifier from the context.
func GetSession(ctx context.Context) string {
	if sessionID, ok := ctx.Value(SessionKey).(string); ok {
		return sessionID
	}
	return ""
}

// WithContract adds a contract identifier to the context.
func WithContract(ctx context.Context, contractID string) context.Context {
	return context.WithValue(ctx, ContractKey, contractID)
}

// GetContract retrieves the contract identifier from the context.
func GetContract(ctx context.Context) string {
	if contractID, ok := ctx.Value(ContractKey).(string); ok {
		return contractID
	}
	return ""
}

// WithJudge adds a judge name to the context.
func WithJudge(ctx context.Context, judge string) context.Context {
	return context.WithValue(ctx, JudgeKey, judge)
}

// GetJudge retrieves the judge name from the context.
func GetJudge(ctx context.Context) string {
	if judge, ok := ctx.Value(JudgeKey).(string); ok {
		return judge
	}
	return ""
}

// extractContextFields extracts common fields from context for
// logging. Returns a slice of key-value pairs suitable for
// logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if sessionID := GetSession(ctx); sessionID != "" {
		fields = append(fields, "session_id", sessionID)
	}
	if contractID := GetContract(ctx); contractID != "" {
		fields = append(fields, "contract_id", contractID)
	}
	if judge := GetJudge(ctx); judge != "" {
		fields = append(fields, "judge", judge)
	}
	return fields
}
