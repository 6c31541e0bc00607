package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports liveness and the health of both judge
// backends. The service stays up when a judge is down (reviews fall
// back), so an unhealthy judge degrades the status without failing
// the probe.
type HealthHandler struct {
	judges []JudgeStatus
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(judges ...JudgeStatus) *HealthHandler {
	return &HealthHandler{judges: judges}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	judgeStatus := make(map[string]any, len(h.judges))
	for _, j := range h.judges {
		health := j.Health()
		judgeStatus[j.Name()] = map[string]any{
			"healthy":              health.Healthy,
			"consecutive_failures": health.ConsecutiveFailures,
			"last_error":           health.LastError,
		}
		if !health.Healthy {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"judges":    judgeStatus,
		"timestamp": time.Now().Unix(),
	})
}
