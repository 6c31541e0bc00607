package judges

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"veritas-hq/minos/pkg/review"
)

// Default transport tuning shared by both judge clients.
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second

	// consecutive failures before a judge is reported unhealthy
	healthFailureThreshold = 3
)

// Config configures one judge client.
type Config struct {
	// Name identifies the judge in logs, metrics, and errors
	// ("semantic" or "rule_engine").
	Name string
	// Endpoint is the judge base URL without a trailing slash.
	Endpoint string
	// Timeout bounds each call independently of the caller's context.
	Timeout time.Duration
	// Headers are added to every request.
	Headers map[string]string
}

// Health is a point-in-time view of a judge's reachability, derived
// from the outcome of recent calls.
type Health struct {
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastChecked         time.Time `json:"lastChecked"`
	LastError           string    `json:"lastError,omitempty"`
}

// HTTPClient is the base shared by the judge clients: pooled
// transport, JSON request construction, status mapping, and health
// bookkeeping. Endpoint, timeout, and headers can be swapped at
// runtime via Reconfigure; mu guards them alongside the health state.
type HTTPClient struct {
	logger *slog.Logger

	mu         sync.RWMutex
	config     Config
	httpClient *http.Client
	health     Health
}

// NewHTTPClient creates a judge client base. A nil logger falls back
// to the process default.
func NewHTTPClient(cfg Config, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	transport := &http.Transport{
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}
	return &HTTPClient{
		config: cfg,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: logger.With("component", "judges."+cfg.Name),
		health: Health{Healthy: true},
	}
}

// Name returns the judge identifier used in logs and errors.
func (c *HTTPClient) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Name
}

// Endpoint returns the configured base URL.
func (c *HTTPClient) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Endpoint
}

// Timeout returns the per-call timeout for this judge.
func (c *HTTPClient) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Timeout
}

// Reconfigure swaps the endpoint, timeout, and headers without
// dropping the pooled transport. In-flight requests keep the settings
// they started with; subsequent calls pick up the new ones. Zero
// fields leave the current value in place.
func (c *HTTPClient) Reconfigure(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg.Endpoint != "" && cfg.Endpoint != c.config.Endpoint {
		c.config.Endpoint = cfg.Endpoint
		c.logger.Info("judge endpoint updated", "endpoint", cfg.Endpoint)
	}
	if cfg.Timeout > 0 && cfg.Timeout != c.config.Timeout {
		c.config.Timeout = cfg.Timeout
		c.httpClient = &http.Client{
			Transport: c.httpClient.Transport,
			Timeout:   cfg.Timeout,
		}
		c.logger.Info("judge timeout updated", "timeout", cfg.Timeout)
	}
	if cfg.Headers != nil {
		c.config.Headers = cfg.Headers
	}
}

// PostJSON issues a POST with a JSON body and returns the raw
// response. The caller owns resp.Body. Transport failures come back
// as *review.JudgeTransportError; non-2xx statuses as
// *review.JudgeStatusRejectedError (with the body drained and closed).
func (c *HTTPClient) PostJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	c.mu.RLock()
	cfg := c.config
	client := c.httpClient
	c.mu.RUnlock()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", cfg.Name, err)
	}

	url := strings.TrimRight(cfg.Endpoint, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", cfg.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		c.recordFailure(err)
		c.logger.Warn("judge request failed",
			"path", path,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, &review.JudgeTransportError{Judge: cfg.Name, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := readSnippet(resp.Body)
		resp.Body.Close()
		rejected := &review.JudgeStatusRejectedError{
			Judge:      cfg.Name,
			StatusCode: resp.StatusCode,
			Message:    snippet,
		}
		c.recordFailure(rejected)
		c.logger.Warn("judge rejected request",
			"path", path,
			"status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds())
		return nil, rejected
	}

	c.recordSuccess()
	c.logger.Debug("judge request completed",
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

// Health returns a copy of the current health state.
func (c *HTTPClient) Health() Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// Healthy reports whether recent calls have been succeeding.
func (c *HTTPClient) Healthy() bool {
	return c.Health().Healthy
}

// Close releases idle transport connections.
func (c *HTTPClient) Close() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.httpClient.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

func (c *HTTPClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health.Healthy = true
	c.health.ConsecutiveFailures = 0
	c.health.LastChecked = time.Now()
	c.health.LastError = ""
}

func (c *HTTPClient) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health.ConsecutiveFailures++
	c.health.LastChecked = time.Now()
	c.health.LastError = err.Error()
	if c.health.ConsecutiveFailures >= healthFailureThreshold {
		c.health.Healthy = false
	}
}

// readSnippet drains up to 1 KiB of a response body for error
// messages.
func readSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
