// Package semantic implements the client for the LLM-backed semantic
// judge. The judge answers a contract-view query with a
// newline-delimited JSON stream in which each line replaces the
// previous one as a snapshot of the full result; only the final
// snapshot matters.
package semantic

import (
	"context"
	"log/slog"

	"veritas-hq/minos/pkg/judges"
	"veritas-hq/minos/pkg/review"
)

const queryPath = "/query/contract_view"

// Request is the contract-view query sent to the semantic judge. The
// rules travel verbatim so the judge sees every caller-supplied field.
type Request struct {
	ContractID  string                  `json:"contractId"`
	ReviewStage string                  `json:"reviewStage"`
	ReviewRules []review.RuleDefinition `json:"reviewRules"`
}

// ResultSet maps rule id to the sub-result fragments extracted for
// that rule from the final snapshot.
type ResultSet map[int64][]map[string]any

// Client calls the semantic judge.
type Client struct {
	http   *judges.HTTPClient
	logger *slog.Logger
}

// NewClient creates a semantic judge client. A nil logger falls back
// to the process default.
func NewClient(cfg judges.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "semantic"
	}
	return &Client{
		http:   judges.NewHTTPClient(cfg, logger),
		logger: logger.With("component", "judges.semantic"),
	}
}

// Review queries the semantic judge for the given rules and returns
// the per-rule fragments extracted from the final stream snapshot.
// Rules the judge did not answer are simply absent from the result
// set. The error, when non-nil, is one of the review judge errors;
// callers are expected to treat any error as an empty result set.
func (c *Client) Review(ctx context.Context, req Request) (ResultSet, error) {
	resp, err := c.http.PostJSON(ctx, queryPath, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	snapshot, byteLen, err := readSnapshot(resp.Body)
	if err != nil {
		return nil, &review.JudgeResponseMalformedError{
			Judge:      c.http.Name(),
			StatusCode: resp.StatusCode,
			ByteLen:    byteLen,
			Cause:      err,
		}
	}

	results := extractResults(snapshot)
	c.logger.Info("semantic review completed",
		"contract_id", req.ContractID,
		"rules_requested", len(req.ReviewRules),
		"rules_answered", len(results))
	return results, nil
}

// Name returns the judge name.
func (c *Client) Name() string {
	return c.http.Name()
}

// Reconfigure applies updated endpoint, timeout, and header settings
// to subsequent calls.
func (c *Client) Reconfigure(cfg judges.Config) {
	c.http.Reconfigure(cfg)
}

// Health reports the client's reachability state.
func (c *Client) Health() judges.Health {
	return c.http.Health()
}

// Healthy reports whether recent calls have been succeeding.
func (c *Client) Healthy() bool {
	return c.http.Healthy()
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.Close()
}
