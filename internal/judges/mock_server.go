// Package judges provides mock judge servers for testing the judge
// clients and the review pipeline.
package judges

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockJudge is a mock HTTP server standing in for either judge
// service. It can answer with plain JSON bodies (rule engine) or
// newline-delimited JSON streams (semantic judge).
type MockJudge struct {
	server       *httptest.Server
	responses    map[string]MockResponse
	requestCount int
	lastBody     []byte
	mu           sync.Mutex
}

// MockResponse configures the answer for one path.
type MockResponse struct {
	StatusCode  int
	Body        interface{}
	Delay       time.Duration
	Headers     map[string]string
	StreamLines []string // newline-delimited JSON lines
}

// NewMockJudge creates and starts a mock judge server.
func NewMockJudge() *MockJudge {
	mj := &MockJudge{
		responses: make(map[string]MockResponse),
	}
	mj.server = httptest.NewServer(http.HandlerFunc(mj.handler))
	return mj
}

// URL returns the mock server's base URL.
func (mj *MockJudge) URL() string {
	return mj.server.URL
}

// Close shuts the server down.
func (mj *MockJudge) Close() {
	mj.server.Close()
}

// SetResponse configures the response for a path.
func (mj *MockJudge) SetResponse(path string, response MockResponse) {
	mj.mu.Lock()
	defer mj.mu.Unlock()
	mj.responses[path] = response
}

// RequestCount returns the number of requests received.
func (mj *MockJudge) RequestCount() int {
	mj.mu.Lock()
	defer mj.mu.Unlock()
	return mj.requestCount
}

// LastBody returns the most recent request body.
func (mj *MockJudge) LastBody() []byte {
	mj.mu.Lock()
	defer mj.mu.Unlock()
	return mj.lastBody
}

func (mj *MockJudge) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	mj.mu.Lock()
	mj.requestCount++
	mj.lastBody = body
	response, exists := mj.responses[r.URL.Path]
	mj.mu.Unlock()

	if !exists {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}
	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.StreamLines) > 0 {
		mj.handleStream(w, response)
		return
	}

	w.WriteHeader(response.StatusCode)
	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// handleStream writes newline-delimited JSON lines with flushes in
// between, the way the semantic judge streams snapshots.
func (mj *MockJudge) handleStream(w http.ResponseWriter, response MockResponse) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	for _, line := range response.StreamLines {
		fmt.Fprintf(w, "%s\n", line)
		flusher.Flush()
		time.Sleep(5 * time.Millisecond)
	}
}

// MockEnvelope builds a rule-engine envelope response body.
func MockEnvelope(code int64, data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"code":        code,
		"message":     "ok",
		"description": "",
		"data":        data,
		"total":       1,
		"maxPage":     1,
	}
}

// MockJudgement builds one rule-engine judgement object.
func MockJudgement(ruleID int64, pass bool, verbatim ...string) map[string]interface{} {
	texts := make([]interface{}, 0, len(verbatim))
	for _, v := range verbatim {
		texts = append(texts, v)
	}
	return map[string]interface{}{
		"ruleId":           ruleID,
		"result":           pass,
		"verbatimTextList": texts,
		"reviseOpinion":    "",
	}
}

// MockSnapshot builds a semantic snapshot in the judge's numerically
// keyed framing and returns it as a JSON line.
func MockSnapshot(entries ...map[string]interface{}) string {
	snapshot := map[string]interface{}{}
	for i, e := range entries {
		snapshot[fmt.Sprintf("%d", i)] = e
	}
	bytes, _ := json.Marshal(snapshot)
	return string(bytes)
}

// MockRuleAnswer builds one per-rule semantic answer with a result
// list of fragments.
func MockRuleAnswer(ruleID int64, fragments ...map[string]interface{}) map[string]interface{} {
	list := make([]interface{}, 0, len(fragments))
	for _, f := range fragments {
		list = append(list, f)
	}
	return map[string]interface{}{
		"rule_id":     ruleID,
		"result_list": list,
	}
}

// MockServerError creates a 500 response.
func MockServerError() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       map[string]interface{}{"error": "internal server error"},
	}
}
