package review

import (
	"encoding/json"
	"testing"
)

func TestStringListUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"array", `["a", "b"]`, []string{"a", "b"}},
		{"null", `null`, []string{}},
		{"bare string", `"single"`, []string{"single"}},
		{"mixed values stringified", `["a", 3, true]`, []string{"a", "3", "true"}},
		{"nulls skipped", `["a", null, "b"]`, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			if err := json.Unmarshal([]byte(tt.input), &l); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(l) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(l), len(tt.want), l)
			}
			for i := range tt.want {
				if l[i] != tt.want[i] {
					t.Errorf("l[%d] = %q, want %q", i, l[i], tt.want[i])
				}
			}
		})
	}
}

func TestStringListMarshalNilAsEmptyArray(t *testing.T) {
	var l StringList
	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("nil list marshals to %s, want []", data)
	}
}

func TestRuleDefinitionAliases(t *testing.T) {
	doc := `{
		"rule_id": "42",
		"rule_name": "payment terms",
		"risk_level": "high",
		"riskAttributionId": 7,
		"ruleGroupName": "commercial",
		"exampleList": ["late fee missing"],
		"conditionList": [{"conditionInfo": "{\"field\": \"amount\", \"op\": \"gt\"}"}],
		"reviseOpinion": "add a late fee clause"
	}`

	var r RuleDefinition
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.RuleID != 42 {
		t.Errorf("RuleID = %d, want 42 (numeric string id)", r.RuleID)
	}
	if r.RuleName != "payment terms" || r.RiskLevel != "high" {
		t.Errorf("snake_case aliases not harmonized: %+v", r)
	}
	if r.RiskAttributionID != 7 || r.RuleGroupName != "commercial" {
		t.Errorf("camelCase aliases not harmonized: %+v", r)
	}
	if len(r.ExampleList) != 1 || len(r.ConditionList) != 1 {
		t.Errorf("list fields not populated: %+v", r)
	}

	decoded, err := r.ConditionList[0].Decode()
	if err != nil {
		t.Fatalf("decode conditionInfo: %v", err)
	}
	if decoded["field"] != "amount" {
		t.Errorf("conditionInfo decoded to %v", decoded)
	}
	if r.Raw == nil {
		t.Error("raw document not retained")
	}
}

func TestRuleConditionObjectShapedInfo(t *testing.T) {
	// conditionInfo is a string-encoded document on the wire; an
	// object-shaped value is re-encoded as JSON rather than carried as
	// Go's map formatting.
	var r RuleDefinition
	doc := `{"ruleId": 1, "conditionList": [
		{"conditionInfo": {"op": "lt", "value": 10}},
		{"condition_info": "{\"op\":\"gt\"}"}
	]}`
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("unmarshal rule: %v", err)
	}
	if len(r.ConditionList) != 2 {
		t.Fatalf("conditions = %d, want 2", len(r.ConditionList))
	}

	decoded, err := r.ConditionList[0].Decode()
	if err != nil {
		t.Fatalf("object-shaped conditionInfo did not re-encode as JSON: %v", err)
	}
	if decoded["op"] != "lt" || decoded["value"] != float64(10) {
		t.Errorf("decoded conditionInfo = %v", decoded)
	}
	if r.ConditionList[1].ConditionInfo != `{"op":"gt"}` {
		t.Errorf("string conditionInfo changed: %q", r.ConditionList[1].ConditionInfo)
	}
}

func TestRuleConditionDecodeEmpty(t *testing.T) {
	decoded, err := RuleCondition{}.Decode()
	if err != nil {
		t.Fatalf("decode empty conditionInfo: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("empty conditionInfo decoded to %v", decoded)
	}
}

func TestRuleConditionDecodeInvalid(t *testing.T) {
	if _, err := (RuleCondition{ConditionInfo: "{not json"}).Decode(); err == nil {
		t.Error("expected error for invalid conditionInfo")
	}
}
