package ruleengine

import (
	"encoding/json"
	"testing"

	"veritas-hq/minos/pkg/review"
)

func rules(t *testing.T, ids ...int64) []review.RuleDefinition {
	t.Helper()
	out := make([]review.RuleDefinition, 0, len(ids))
	for _, id := range ids {
		var r review.RuleDefinition
		data, _ := json.Marshal(map[string]any{"ruleId": id})
		if err := json.Unmarshal(data, &r); err != nil {
			t.Fatalf("build rule: %v", err)
		}
		out = append(out, r)
	}
	return out
}

func TestDecodeVerdictsShapes(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantIDs []int64
	}{
		{"null data", `null`, nil},
		{"empty data", ``, nil},
		{"bare true", `true`, []int64{1, 2}},
		{"single object", `{"ruleId": 1, "result": true}`, []int64{1}},
		{"list", `[{"ruleId": 1, "result": true}, {"ruleId": 2, "result": false}]`, []int64{1, 2}},
		{"string rule id", `[{"ruleId": "2", "result": true}]`, []int64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdicts, err := decodeVerdicts(json.RawMessage(tt.data), rules(t, 1, 2))
			if err != nil {
				t.Fatalf("decodeVerdicts: %v", err)
			}
			if len(verdicts) != len(tt.wantIDs) {
				t.Fatalf("verdicts = %d, want %d", len(verdicts), len(tt.wantIDs))
			}
			for _, id := range tt.wantIDs {
				if verdicts[id] == nil {
					t.Errorf("rule %d missing", id)
				}
			}
		})
	}
}

func TestDecodeVerdictsDropsUnrequestedRules(t *testing.T) {
	verdicts, err := decodeVerdicts(
		json.RawMessage(`[{"ruleId": 1, "result": true}, {"ruleId": 99, "result": false}]`),
		rules(t, 1),
	)
	if err != nil {
		t.Fatalf("decodeVerdicts: %v", err)
	}
	if len(verdicts) != 1 || verdicts[1] == nil {
		t.Errorf("verdicts = %+v, want only requested rule 1", verdicts)
	}
}

func TestDecodeVerdictsDuplicateKeepsFirst(t *testing.T) {
	verdicts, err := decodeVerdicts(
		json.RawMessage(`[{"ruleId": 1, "result": true}, {"ruleId": 1, "result": false}]`),
		rules(t, 1),
	)
	if err != nil {
		t.Fatalf("decodeVerdicts: %v", err)
	}
	if !verdicts[1].Pass {
		t.Error("duplicate judgement overwrote the first")
	}
}

func TestDecodeVerdictsMalformedList(t *testing.T) {
	if _, err := decodeVerdicts(json.RawMessage(`[{"ruleId":`), rules(t, 1)); err == nil {
		t.Error("expected error for malformed judgement list")
	}
}
