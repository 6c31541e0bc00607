// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// Middleware functions are chained innermost to outermost:
//
//	handler = Recovery(Logging(RequestID(CORS(Timeout(handler)))))
//
// Innermost first: Timeout applies the per-request deadline with
// streaming paths exempt, CORS writes the Cross-Origin Resource
// Sharing headers, RequestID generates and propagates a request ID,
// Logging records structured request/response logs, and Recovery
// turns panics into 500 responses.
//
// The request ID is a UUID v4, returned in the X-Request-ID response
// header and stored in the request context for handler access:
//
//	requestID := middleware.GetRequestID(r.Context())
//
// All middleware functions are safe for concurrent use.
package middleware
