package ruleengine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"veritas-hq/minos/pkg/review"
)

// ruleDTO is the engine's wire shape for one rule. The engine
// contract is camelCase field names with conditionInfo as a
// string-encoded document, so rules are re-serialized from the typed
// fields instead of echoing the caller's raw document, whose spelling
// and shapes are unconstrained.
type ruleDTO struct {
	RuleID                int64             `json:"ruleId"`
	RuleName              string            `json:"ruleName,omitempty"`
	RiskLevel             string            `json:"riskLevel,omitempty"`
	RiskAttributionID     int64             `json:"riskAttributionId,omitempty"`
	RiskAttributionName   string            `json:"riskAttributionName,omitempty"`
	RuleGroupID           int64             `json:"ruleGroupId,omitempty"`
	RuleGroupName         string            `json:"ruleGroupName,omitempty"`
	IncludeRule           string            `json:"includeRule,omitempty"`
	ExampleList           review.StringList `json:"exampleList"`
	ConditionalIdentifier string            `json:"conditionalIdentifier,omitempty"`
	ConditionList         []conditionDTO    `json:"conditionList"`
	ReviseOpinion         string            `json:"reviseOpinion,omitempty"`
}

type conditionDTO struct {
	ConditionInfo string `json:"conditionInfo"`
}

func toRuleDTOs(defs []review.RuleDefinition) []ruleDTO {
	out := make([]ruleDTO, len(defs))
	for i, def := range defs {
		conds := make([]conditionDTO, len(def.ConditionList))
		for j, c := range def.ConditionList {
			conds[j] = conditionDTO{ConditionInfo: c.ConditionInfo}
		}
		out[i] = ruleDTO{
			RuleID:                def.RuleID,
			RuleName:              def.RuleName,
			RiskLevel:             def.RiskLevel,
			RiskAttributionID:     def.RiskAttributionID,
			RiskAttributionName:   def.RiskAttributionName,
			RuleGroupID:           def.RuleGroupID,
			RuleGroupName:         def.RuleGroupName,
			IncludeRule:           def.IncludeRule,
			ExampleList:           def.ExampleList,
			ConditionalIdentifier: def.ConditionalIdentifier,
			ConditionList:         conds,
			ReviseOpinion:         def.ReviseOpinion,
		}
	}
	return out
}

// judgement is one per-rule answer inside the envelope data.
type judgement struct {
	RuleID           json.RawMessage   `json:"ruleId"`
	Result           bool              `json:"result"`
	VerbatimTextList review.StringList `json:"verbatimTextList"`
	ReviseOpinion    string            `json:"reviseOpinion"`
	Confidence       float64           `json:"confidence"`
}

// decodeVerdicts turns the envelope data into per-rule verdicts. The
// engine answers in one of three shapes:
//
//   - a bare bool: one judgement applied to every requested rule
//   - a single judgement object
//   - a list of judgement objects
//
// Judgements for rules that were not requested are dropped; requested
// rules without a judgement are simply absent from the map (the
// normalizer resolves them by the evidence heuristic).
func decodeVerdicts(data json.RawMessage, requested []review.RuleDefinition) (map[int64]*review.Verdict, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return map[int64]*review.Verdict{}, nil
	}

	if trimmed == "true" || trimmed == "false" {
		pass := trimmed == "true"
		verdicts := make(map[int64]*review.Verdict, len(requested))
		for _, rule := range requested {
			verdicts[rule.RuleID] = &review.Verdict{RuleID: rule.RuleID, Pass: pass}
		}
		return verdicts, nil
	}

	var list []judgement
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode judgement list: %w", err)
		}
	} else {
		var single judgement
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("decode judgement: %w", err)
		}
		list = []judgement{single}
	}

	wanted := make(map[int64]bool, len(requested))
	for _, rule := range requested {
		wanted[rule.RuleID] = true
	}

	verdicts := make(map[int64]*review.Verdict, len(list))
	for _, j := range list {
		id, ok := judgementRuleID(j.RuleID)
		if !ok || !wanted[id] {
			continue
		}
		if _, seen := verdicts[id]; seen {
			continue
		}
		verdicts[id] = &review.Verdict{
			RuleID:           id,
			Pass:             j.Result,
			VerbatimTextList: j.VerbatimTextList,
			ReviseOpinion:    j.ReviseOpinion,
			Confidence:       j.Confidence,
		}
	}
	return verdicts, nil
}

// judgementRuleID accepts the id as a JSON number or a numeric string.
func judgementRuleID(raw json.RawMessage) (int64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, "\"")
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}
