package review

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReviewResult is the binary outcome of confirming a single rule.
type ReviewResult string

const (
	// ReviewPass means no violating content was found for the rule.
	ReviewPass ReviewResult = "pass"
	// ReviewFail means violating content was found for the rule.
	ReviewFail ReviewResult = "fail"
)

// UserFeedback captures reviewer feedback on a stored result.
type UserFeedback string

const (
	FeedbackNone    UserFeedback = "none"
	FeedbackLike    UserFeedback = "like"
	FeedbackDislike UserFeedback = "dislike"
)

// StringList is a []string that always serializes as a JSON array,
// never as null, and tolerates lenient input: a JSON array of mixed
// values (non-strings are stringified), a bare string, or null.
type StringList []string

// MarshalJSON emits [] for a nil list.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON accepts null, a bare string, or an array of values.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = StringList{}
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(StringList, 0, len(raw))
	for _, v := range raw {
		switch s := v.(type) {
		case string:
			out = append(out, s)
		case nil:
			// skip
		default:
			out = append(out, fmt.Sprintf("%v", s))
		}
	}
	*l = out
	return nil
}

// HasEvidence reports whether the list contains any entry that is not
// empty or whitespace-only.
func (l StringList) HasEvidence() bool {
	for _, s := range l {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// RuleCondition is one entry of a rule's conditionList. ConditionInfo
// is a string-encoded JSON document supplied by the rule author; it is
// carried through verbatim and only decoded on demand.
type RuleCondition struct {
	ConditionInfo string `json:"conditionInfo"`
}

// Decode parses the string-encoded conditionInfo document. An empty
// conditionInfo decodes to an empty map.
func (c RuleCondition) Decode() (map[string]any, error) {
	if strings.TrimSpace(c.ConditionInfo) == "" {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(c.ConditionInfo), &out); err != nil {
		return nil, fmt.Errorf("decode conditionInfo: %w", err)
	}
	return out, nil
}

// RuleDefinition is a review rule as submitted by the caller. Field
// names arrive in either camelCase or snake_case; UnmarshalJSON
// harmonizes the aliases and retains the raw document in Raw so the
// classifier can search it for the engine selector.
type RuleDefinition struct {
	RuleID                int64
	RuleName              string
	RiskLevel             string
	RiskAttributionID     int64
	RiskAttributionName   string
	RuleGroupID           int64
	RuleGroupName         string
	IncludeRule           string
	ExampleList           StringList
	ConditionalIdentifier string
	ConditionList         []RuleCondition
	ReviseOpinion         string

	// Raw is the rule document exactly as received.
	Raw map[string]any
}

// UnmarshalJSON decodes the rule document into Raw and then populates
// the typed fields from their known aliases.
func (r *RuleDefinition) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Raw = raw
	r.RuleID = pickInt(raw, "ruleId", "rule_id", "id")
	r.RuleName = pickString(raw, "ruleName", "rule_name", "name")
	r.RiskLevel = pickString(raw, "riskLevel", "risk_level")
	r.RiskAttributionID = pickInt(raw, "riskAttributionId", "risk_attribution_id")
	r.RiskAttributionName = pickString(raw, "riskAttributionName", "risk_attribution_name")
	r.RuleGroupID = pickInt(raw, "ruleGroupId", "rule_group_id")
	r.RuleGroupName = pickString(raw, "ruleGroupName", "rule_group_name")
	r.IncludeRule = pickString(raw, "includeRule", "include_rule")
	r.ExampleList = pickList(raw, "exampleList", "example_list")
	r.ConditionalIdentifier = pickString(raw, "conditionalIdentifier", "conditional_identifier")
	r.ReviseOpinion = pickString(raw, "reviseOpinion", "revise_opinion")
	r.ConditionList = pickConditions(raw, "conditionList", "condition_list")
	return nil
}

// MarshalJSON round-trips the original document when present so that
// caller-supplied fields outside the typed set survive.
func (r RuleDefinition) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return json.Marshal(r.Raw)
	}
	return json.Marshal(map[string]any{
		"ruleId":    r.RuleID,
		"ruleName":  r.RuleName,
		"riskLevel": r.RiskLevel,
	})
}

// CanonicalRuleResult is the single normalized record produced for each
// requested rule. List fields serialize as [] rather than null.
type CanonicalRuleResult struct {
	SessionID           string       `json:"sessionId"`
	ContractID          string       `json:"contractId"`
	RuleID              int64        `json:"ruleId"`
	RuleIndex           int          `json:"ruleIndex"`
	RuleName            string       `json:"ruleName"`
	RiskLevel           string       `json:"riskLevel"`
	RiskOrdinal         int          `json:"riskOrdinal"`
	RiskAttributionID   int64        `json:"riskAttributionId"`
	RiskAttributionName string       `json:"riskAttributionName"`
	RuleGroupID         int64        `json:"ruleGroupId"`
	RuleGroupName       string       `json:"ruleGroupName"`
	ReviewResult        ReviewResult `json:"reviewResult"`
	RuleConfirmResult   string       `json:"ruleConfirmResult"`
	VerbatimTextList    StringList   `json:"verbatimTextList"`
	MatchedContent      StringList   `json:"matchedContent"`
	Suggestions         StringList   `json:"suggestions"`
	Issues              StringList   `json:"issues"`
	ReviseOpinion       string       `json:"reviseOpinion"`
	Analysis            string       `json:"analysis"`
	ConfidenceScore     float64      `json:"confidenceScore"`
	UserFeedback        UserFeedback `json:"userFeedback"`
	CreatedAt           time.Time    `json:"createdAt"`
}

// Evidence returns the combined evidence fields used by the pass/fail
// heuristic and the fallback policy.
func (c CanonicalRuleResult) Evidence() StringList {
	out := make(StringList, 0, len(c.VerbatimTextList)+len(c.MatchedContent))
	out = append(out, c.VerbatimTextList...)
	out = append(out, c.MatchedContent...)
	return out
}

// Verdict is a deterministic rule-engine judgement for one rule. When
// attached to a normalization input it overrides the evidence-based
// pass/fail heuristic.
type Verdict struct {
	RuleID           int64
	Pass             bool
	VerbatimTextList StringList
	ReviseOpinion    string
	Confidence       float64
}

// Diagnostic records a non-fatal anomaly observed while processing a
// batch. Diagnostics ride along in the batch_completed event instead of
// failing the review.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	RuleID  int64          `json:"ruleId,omitempty"`
	Message string         `json:"message"`
}

// DiagnosticKind enumerates the anomaly classes a batch can surface.
type DiagnosticKind string

const (
	DiagClassificationAmbiguity DiagnosticKind = "classification_ambiguity"
	DiagJudgeFailure            DiagnosticKind = "judge_failure"
	DiagFallbackApplied         DiagnosticKind = "fallback_applied"
	DiagPersistenceSkip         DiagnosticKind = "persistence_skip"
)
