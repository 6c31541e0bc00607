package judges

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReconfigureSwitchesEndpoint(t *testing.T) {
	hits := map[string]int{}
	newServer := func(name string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits[name]++
			json.NewEncoder(w).Encode(map[string]any{"ok": true})
		}))
	}
	first := newServer("first")
	defer first.Close()
	second := newServer("second")
	defer second.Close()

	c := NewHTTPClient(Config{
		Name:     "semantic",
		Endpoint: first.URL,
		Timeout:  5 * time.Second,
	}, nil)
	defer c.Close()

	resp, err := c.PostJSON(context.Background(), "/query/contract_view", map[string]any{})
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	resp.Body.Close()

	c.Reconfigure(Config{Endpoint: second.URL, Timeout: 10 * time.Second})

	resp, err = c.PostJSON(context.Background(), "/query/contract_view", map[string]any{})
	if err != nil {
		t.Fatalf("PostJSON after reconfigure: %v", err)
	}
	resp.Body.Close()

	if hits["first"] != 1 || hits["second"] != 1 {
		t.Errorf("hits = %v, want one call per endpoint", hits)
	}
	if c.Endpoint() != second.URL {
		t.Errorf("Endpoint() = %q, want %q", c.Endpoint(), second.URL)
	}
	if c.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s", c.Timeout())
	}
}

func TestReconfigureIgnoresZeroValues(t *testing.T) {
	c := NewHTTPClient(Config{
		Name:     "rule_engine",
		Endpoint: "http://example.invalid",
		Timeout:  30 * time.Second,
		Headers:  map[string]string{"Authorization": "Bearer t"},
	}, nil)
	defer c.Close()

	c.Reconfigure(Config{})

	if c.Endpoint() != "http://example.invalid" {
		t.Errorf("Endpoint() = %q, zero reconfigure must not clear it", c.Endpoint())
	}
	if c.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, zero reconfigure must not clear it", c.Timeout())
	}
}
