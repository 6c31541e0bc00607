// Package ruleengine implements the client for the deterministic
// rule-engine judge. The engine confirms a whole batch of rules in one
// call and answers with a coded envelope; there is no streaming and no
// retry — a failed call makes the orchestrator fall back to local
// evidence-based resolution for the entire deterministic track.
package ruleengine

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"veritas-hq/minos/pkg/judges"
	"veritas-hq/minos/pkg/review"
)

const confirmPath = "/rule/confirm"

// Envelope success codes. The engine has answered 200 historically and
// 10000000 since its envelope revision; both mean success.
const (
	codeSuccessLegacy   = 200
	codeSuccessEnvelope = 10000000
)

// envelope response size guard
const maxResponseSize = 16 * 1024 * 1024

// Request is the batch confirmation request as built by the
// orchestrator. On the wire the rules are reduced to the engine's
// camelCase DTO shape; see confirmPayload.
type Request struct {
	ContractID        string
	ReviewRuleDTOList []review.RuleDefinition
}

// confirmPayload is the wire form of a confirmation request, with the
// rules under the engine's historical field name.
type confirmPayload struct {
	ContractID        string    `json:"contractId"`
	ReviewRuleDTOList []ruleDTO `json:"reviewRuleDtoList"`
}

// envelope is the engine's response framing. Data is decoded in a
// second pass because the engine has answered with a bare bool, a
// single judgement object, or a judgement list.
type envelope struct {
	Code        int64           `json:"code"`
	Message     string          `json:"message"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
	Total       int             `json:"total"`
	MaxPage     int             `json:"maxPage"`
}

// Client calls the rule engine.
type Client struct {
	http   *judges.HTTPClient
	logger *slog.Logger
}

// NewClient creates a rule-engine client. A nil logger falls back to
// the process default.
func NewClient(cfg judges.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "rule_engine"
	}
	return &Client{
		http:   judges.NewHTTPClient(cfg, logger),
		logger: logger.With("component", "judges.ruleengine"),
	}
}

// Confirm sends the deterministic batch and returns one verdict per
// answered rule, keyed by rule id. The call is single-shot: any
// failure (transport, malformed body, rejected envelope code) is
// returned as-is so the orchestrator can apply the fallback policy to
// the whole track.
func (c *Client) Confirm(ctx context.Context, req Request) (map[int64]*review.Verdict, error) {
	resp, err := c.http.PostJSON(ctx, confirmPath, confirmPayload{
		ContractID:        req.ContractID,
		ReviewRuleDTOList: toRuleDTOs(req.ReviewRuleDTOList),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &review.JudgeTransportError{Judge: c.http.Name(), Cause: err}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &review.JudgeResponseMalformedError{
			Judge:      c.http.Name(),
			StatusCode: resp.StatusCode,
			ByteLen:    len(body),
			Raw:        string(body),
			Cause:      err,
		}
	}
	if env.Code != codeSuccessLegacy && env.Code != codeSuccessEnvelope {
		return nil, &review.JudgeStatusRejectedError{
			Judge:   c.http.Name(),
			Code:    env.Code,
			Message: env.Message,
		}
	}

	verdicts, err := decodeVerdicts(env.Data, req.ReviewRuleDTOList)
	if err != nil {
		return nil, &review.JudgeResponseMalformedError{
			Judge:      c.http.Name(),
			StatusCode: resp.StatusCode,
			ByteLen:    len(body),
			Raw:        string(env.Data),
			Cause:      err,
		}
	}

	c.logger.Info("rule engine confirm completed",
		"contract_id", req.ContractID,
		"rules_requested", len(req.ReviewRuleDTOList),
		"verdicts", len(verdicts))
	return verdicts, nil
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
