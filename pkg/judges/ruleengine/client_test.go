package ruleengine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mockjudges "veritas-hq/minos/internal/judges"
	"veritas-hq/minos/pkg/judges"
	"veritas-hq/minos/pkg/review"
)

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	c := NewClient(judges.Config{
		Name:     "rule_engine",
		Endpoint: url,
		Timeout:  5 * time.Second,
	}, nil)
	t.Cleanup(c.Close)
	return c
}

func testRules(t *testing.T, ids ...int64) []review.RuleDefinition {
	t.Helper()
	rules := make([]review.RuleDefinition, 0, len(ids))
	for _, id := range ids {
		var r review.RuleDefinition
		doc := map[string]any{"ruleId": id, "censoredSearchEngine": 1}
		data, _ := json.Marshal(doc)
		if err := json.Unmarshal(data, &r); err != nil {
			t.Fatalf("build rule: %v", err)
		}
		rules = append(rules, r)
	}
	return rules
}

func TestConfirmJudgementList(t *testing.T) {
	mock := mockjudges.NewMockJudge()
	defer mock.Close()
	mock.SetResponse("/rule/confirm", mockjudges.MockResponse{
		StatusCode: 200,
		Body: mockjudges.MockEnvelope(10000000, []interface{}{
			mockjudges.MockJudgement(1, true),
			mockjudges.MockJudgement(2, false, "clause 4.2"),
		}),
	})

	verdicts, err := testClient(t, mock.URL()).Confirm(context.Background(), Request{
		ContractID:        "c-1",
		ReviewRuleDTOList: testRules(t, 1, 2),
	})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(verdicts) != 2 {
		t.Fatalf("verdicts = %d, want 2", len(verdicts))
	}
	if !verdicts[1].Pass || verdicts[2].Pass {
		t.Errorf("verdicts = %+v, want rule 1 pass and rule 2 fail", verdicts)
	}
	if len(verdicts[2].VerbatimTextList) != 1 {
		t.Errorf("rule 2 evidence = %v", verdicts[2].VerbatimTextList)
	}
}

func TestConfirmLegacySuccessCode(t *testing.T) {
	mock := mockjudges.NewMockJudge()
	defer mock.Close()
	mock.SetResponse("/rule/confirm", mockjudges.MockResponse{
		StatusCode: 200,
		Body:       mockjudges.MockEnvelope(200, []interface{}{mockjudges.MockJudgement(1, true)}),
	})

	verdicts, err := testClient(t, mock.URL()).Confirm(context.Background(), Request{
		ContractID:        "c-2",
		ReviewRuleDTOList: testRules(t, 1),
	})
	if err != nil {
		t.Fatalf("Confirm with legacy code: %v", err)
	}
	if len(verdicts) != 1 {
		t.Errorf("verdicts = %d, want 1", len(verdicts))
	}
}

func TestConfirmBareBoolAppliesToAllRules(t *testing.T) {
	mock := mockjudges.NewMockJudge()
	defer mock.Close()
	mock.SetResponse("/rule/confirm", mockjudges.MockResponse{
		StatusCode: 200,
		Body:       mockjudges.MockEnvelope(10000000, false),
	})

	verdicts, err := testClient(t, mock.URL()).Confirm(context.Background(), Request{
		ContractID:        "c-3",
		ReviewRuleDTOList: testRules(t, 1, 2, 3),
	})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(verdicts) != 3 {
		t.Fatalf("verdicts = %d, want one per requested rule", len(verdicts))
	}
	for id, v := range verdicts {
		if v.Pass {
			t.Errorf("rule %d verdict = pass, want fail from bare false", id)
		}
	}
}

func TestConfirmRejectedEnvelopeCode(t *testing.T) {
	mock := mockjudges.NewMockJudge()
	defer mock.Close()
	mock.SetResponse("/rule/confirm", mockjudges.MockResponse{
		StatusCode: 200,
		Body:       mockjudges.MockEnvelope(50000001, nil),
	})

	_, err := testClient(t, mock.URL()).Confirm(context.Background(), Request{
		ContractID:        "c-4",
		ReviewRuleDTOList: testRules(t, 1),
	})
	var rejected *review.JudgeStatusRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want JudgeStatusRejectedError", err)
	}
	if rejected.Code != 50000001 {
		t.Errorf("code = %d, want 50000001", rejected.Code)
	}
}

func TestConfirmMalformedBody(t *testing.T) {
	mock := mockjudges.NewMockJudge()
	defer mock.Close()
	mock.SetResponse("/rule/confirm", mockjudges.MockResponse{
		StatusCode: 200,
		Body:       "<html>gateway error</html>",
	})

	_, err := testClient(t, mock.URL()).Confirm(context.Background(), Request{
		ContractID:        "c-5",
		ReviewRuleDTOList: testRules(t, 1),
	})
	var malformed *review.JudgeResponseMalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want JudgeResponseMalformedError", err)
	}
	if malformed.StatusCode != 200 || malformed.ByteLen == 0 {
		t.Errorf("malformed error missing response details: status=%d bytes=%d", malformed.StatusCode, malformed.ByteLen)
	}
}

func TestConfirmWirePayloadCamelCase(t *testing.T) {
	mock := mockjudges.NewMockJudge()
	defer mock.Close()
	mock.SetResponse("/rule/confirm", mockjudges.MockResponse{
		StatusCode: 200,
		Body:       mockjudges.MockEnvelope(10000000, true),
	})

	// The caller spelled everything snake_case and shipped
	// conditionInfo as an object; the engine must still receive
	// camelCase names and a string-encoded conditionInfo.
	var r review.RuleDefinition
	doc := `{"rule_id": 11, "rule_name": "liability cap", "censored_search_engine": "1",
		"condition_list": [{"condition_info": {"threshold": 5}}]}`
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("build rule: %v", err)
	}

	if _, err := testClient(t, mock.URL()).Confirm(context.Background(), Request{
		ContractID:        "c-7",
		ReviewRuleDTOList: []review.RuleDefinition{r},
	}); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	var sent struct {
		ContractID string           `json:"contractId"`
		Rules      []map[string]any `json:"reviewRuleDtoList"`
	}
	if err := json.Unmarshal(mock.LastBody(), &sent); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if sent.ContractID != "c-7" || len(sent.Rules) != 1 {
		t.Fatalf("payload = %+v, want contract c-7 with 1 rule", sent)
	}
	rule := sent.Rules[0]
	if rule["ruleId"] != float64(11) || rule["ruleName"] != "liability cap" {
		t.Errorf("rule fields not harmonized to camelCase: %v", rule)
	}
	if _, leaked := rule["rule_id"]; leaked {
		t.Errorf("snake_case field leaked to the engine: %v", rule)
	}
	conds, ok := rule["conditionList"].([]any)
	if !ok || len(conds) != 1 {
		t.Fatalf("conditionList = %v, want one condition", rule["conditionList"])
	}
	info, ok := conds[0].(map[string]any)["conditionInfo"].(string)
	if !ok {
		t.Fatalf("conditionInfo not string-encoded: %v", conds[0])
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(info), &decoded); err != nil || decoded["threshold"] != float64(5) {
		t.Errorf("conditionInfo %q does not round-trip the object", info)
	}
}

func TestConfirmNoRetry(t *testing.T) {
	mock := mockjudges.NewMockJudge()
	defer mock.Close()
	mock.SetResponse("/rule/confirm", mockjudges.MockServerError())

	_, err := testClient(t, mock.URL()).Confirm(context.Background(), Request{
		ContractID:        "c-6",
		ReviewRuleDTOList: testRules(t, 1),
	})
	if err == nil {
		t.Fatal("expected error from 500 response")
	}
	if got := mock.RequestCount(); got != 1 {
		t.Errorf("request count = %d, want exactly 1 (no retry)", got)
	}
}

func TestConfirmTransportError(t *testing.T) {
	_, err := testClient(t, "http://127.0.0.1:1").Confirm(context.Background(), Request{
		ContractID:        "c-7",
		ReviewRuleDTOList: testRules(t, 1),
	})
	var transport *review.JudgeTransportError
	if !errors.As(err, &transport) {
		t.Fatalf("err = %v, want JudgeTransportError", err)
	}
}
