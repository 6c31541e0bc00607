package semantic

import (
	"strconv"
	"strings"
)

// extractResults walks the final snapshot depth-first and collects
// every object carrying both a rule id and a result list. The judge
// has answered with several framings over time (numerically keyed
// maps, nested wrappers, plain arrays); recursive extraction handles
// all of them uniformly. When the same rule id appears more than once
// the first extraction wins.
func extractResults(snapshot any) ResultSet {
	results := ResultSet{}
	walkSnapshot(snapshot, results)
	return results
}

func walkSnapshot(v any, results ResultSet) {
	switch node := v.(type) {
	case map[string]any:
		if id, list, ok := ruleEntry(node); ok {
			if _, seen := results[id]; !seen {
				results[id] = list
			}
			return
		}
		for _, child := range node {
			walkSnapshot(child, results)
		}
	case []any:
		for _, child := range node {
			walkSnapshot(child, results)
		}
	}
}

// ruleEntry reports whether the object is a per-rule answer: a rule id
// under one of its aliases plus a result_list array. Fragments that
// are not objects are dropped.
func ruleEntry(node map[string]any) (int64, []map[string]any, bool) {
	id, ok := ruleID(node)
	if !ok {
		return 0, nil, false
	}
	rawList, ok := resultList(node)
	if !ok {
		return 0, nil, false
	}
	fragments := make([]map[string]any, 0, len(rawList))
	for _, item := range rawList {
		if frag, ok := item.(map[string]any); ok {
			fragments = append(fragments, frag)
		}
	}
	return id, fragments, true
}

func ruleID(node map[string]any) (int64, bool) {
	for _, key := range []string{"rule_id", "ruleId", "id"} {
		if v, ok := node[key]; ok {
			if id, ok := asIdentifier(v); ok {
				return id, true
			}
		}
	}
	return 0, false
}

// asIdentifier coerces the id shapes JSON decoding produces: numbers
// and numeric strings.
func asIdentifier(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func resultList(node map[string]any) ([]any, bool) {
	for _, key := range []string{"result_list", "resultList"} {
		if v, ok := node[key]; ok {
			list, ok := v.([]any)
			return list, ok
		}
	}
	return nil, false
}
