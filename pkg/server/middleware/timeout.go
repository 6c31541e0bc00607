package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// TimeoutMiddleware enforces a per-request timeout using
// context.WithTimeout. If the timeout is exceeded, the request context
// is cancelled and a 504 Gateway Timeout error is returned.
//
// Streaming endpoints hold the connection open for the whole review
// batch, so paths listed in exempt are passed through untouched.
//
// Example usage:
//
//	handler = TimeoutMiddleware(60*time.Second, "/api/v1/review/stream")(handler)
func TimeoutMiddleware(timeout time.Duration, exempt ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range exempt {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(w, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return

			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"error": map[string]any{
							"code":    "request_timeout",
							"message": "the request took too long to complete",
						},
					})
				}
			}
		})
	}
}
