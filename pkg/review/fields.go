package review

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Alias pickers used wherever a document may spell a field in either
// camelCase or snake_case. The first key present wins, matching the
// fragment > definition > default precedence applied by the normalizer.

func pickString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			return s
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(s)
		default:
			return fmt.Sprintf("%v", s)
		}
	}
	return ""
}

func pickInt(m map[string]any, keys ...string) int64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if n, ok := asInt(v); ok {
			return n
		}
	}
	return 0
}

func pickFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func pickList(m map[string]any, keys ...string) StringList {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch list := v.(type) {
		case []any:
			out := make(StringList, 0, len(list))
			for _, item := range list {
				switch s := item.(type) {
				case string:
					out = append(out, s)
				case nil:
					// skip
				default:
					out = append(out, fmt.Sprintf("%v", s))
				}
			}
			return out
		case string:
			if strings.TrimSpace(list) == "" {
				return StringList{}
			}
			return StringList{list}
		}
	}
	return StringList{}
}

func pickConditions(m map[string]any, keys ...string) []RuleCondition {
	for _, k := range keys {
		list, ok := m[k].([]any)
		if !ok {
			continue
		}
		out := make([]RuleCondition, 0, len(list))
		for _, item := range list {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, RuleCondition{
				ConditionInfo: conditionInfoString(obj),
			})
		}
		return out
	}
	return nil
}

// conditionInfoString returns conditionInfo in its string-encoded
// form. A string value passes through; an object or array shape is
// re-encoded as JSON so downstream consumers always see a
// string-encoded document.
func conditionInfoString(obj map[string]any) string {
	for _, k := range []string{"conditionInfo", "condition_info"} {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			return s
		}
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
	}
	return ""
}

// asInt coerces the value shapes JSON decoding can produce for an id:
// float64, json.Number, or a numeric string.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}
