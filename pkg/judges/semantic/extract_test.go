package semantic

import (
	"encoding/json"
	"testing"
)

func parseSnapshot(t *testing.T, doc string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	return v
}

func TestExtractResultsFramings(t *testing.T) {
	tests := []struct {
		name     string
		snapshot string
		wantIDs  []int64
	}{
		{
			name:     "numerically keyed map",
			snapshot: `{"0": {"rule_id": 1, "result_list": [{}]}, "1": {"rule_id": 2, "result_list": []}}`,
			wantIDs:  []int64{1, 2},
		},
		{
			name:     "plain array",
			snapshot: `[{"rule_id": 3, "result_list": [{}]}]`,
			wantIDs:  []int64{3},
		},
		{
			name:     "nested wrapper",
			snapshot: `{"data": {"answers": [{"ruleId": 4, "resultList": [{}]}]}}`,
			wantIDs:  []int64{4},
		},
		{
			name:     "id alias",
			snapshot: `[{"id": 5, "result_list": [{}]}]`,
			wantIDs:  []int64{5},
		},
		{
			name:     "string rule id",
			snapshot: `[{"rule_id": "6", "result_list": [{}]}]`,
			wantIDs:  []int64{6},
		},
		{
			name:     "object without result list ignored",
			snapshot: `{"rule_id": 9, "note": "no results"}`,
			wantIDs:  nil,
		},
		{
			name:     "scalar snapshot yields nothing",
			snapshot: `"done"`,
			wantIDs:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := extractResults(parseSnapshot(t, tt.snapshot))
			if len(results) != len(tt.wantIDs) {
				t.Fatalf("extracted %d rules, want %d: %v", len(results), len(tt.wantIDs), results)
			}
			for _, id := range tt.wantIDs {
				if _, ok := results[id]; !ok {
					t.Errorf("rule %d missing from results", id)
				}
			}
		})
	}
}

func TestExtractResultsDuplicateRuleKeepsFirst(t *testing.T) {
	snapshot := parseSnapshot(t, `[
		{"rule_id": 1, "result_list": [{"matched_content": ["first"]}]},
		{"rule_id": 1, "result_list": [{"matched_content": ["second"]}]}
	]`)

	results := extractResults(snapshot)
	if len(results) != 1 {
		t.Fatalf("results = %d rules, want 1", len(results))
	}
	frag := results[1][0]
	if got := frag["matched_content"].([]any)[0]; got != "first" {
		t.Errorf("duplicate rule id kept %v, want first extraction", got)
	}
}

func TestExtractResultsDropsNonObjectFragments(t *testing.T) {
	snapshot := parseSnapshot(t, `[{"rule_id": 1, "result_list": [{"a": 1}, "stray", 42]}]`)

	results := extractResults(snapshot)
	if len(results[1]) != 1 {
		t.Errorf("fragments = %v, want only the object kept", results[1])
	}
}
