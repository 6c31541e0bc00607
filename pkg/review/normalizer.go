package review

import (
	"log/slog"
	"time"
)

// defaultConfidence is assumed for semantic fragments that carry no
// confidence score of their own. Deterministic verdicts report 100.
const (
	defaultConfidence       = 50
	deterministicConfidence = 100
)

// NormalizeInput carries everything known about one rule at
// normalization time. Fragments holds the semantic judge's sub-results
// for the rule (nil for deterministic-track rules or when the semantic
// judge returned nothing). Verdict holds the rule-engine judgement when
// one arrived. FallbackCause, when non-nil, marks the rule as resolved
// by FallbackPolicy because the rule engine failed.
type NormalizeInput struct {
	Rule          ClassifiedRule
	SessionID     string
	ContractID    string
	Fragments     []map[string]any
	Verdict       *Verdict
	FallbackCause error
}

// Normalizer folds judge output and rule definitions into canonical
// records. Field aliases are harmonized with the precedence
// fragment > rule definition > default; a deterministic verdict always
// decides reviewResult and is never overwritten by the evidence
// heuristic.
type Normalizer struct {
	fallback FallbackPolicy
	logger   *slog.Logger
	now      func() time.Time
}

// NewNormalizer creates a Normalizer. A nil logger falls back to the
// process default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger: logger.With("component", "review.normalizer"),
		now:    time.Now,
	}
}

// Normalize produces the canonical record for one rule. It never
// fails: missing fields fall through the alias precedence to the rule
// definition and then to zero values, and list fields are always
// non-nil.
func (n *Normalizer) Normalize(in NormalizeInput) (CanonicalRuleResult, []Diagnostic) {
	rule := in.Rule.Rule
	out := CanonicalRuleResult{
		SessionID:           in.SessionID,
		ContractID:          in.ContractID,
		RuleID:              rule.RuleID,
		RuleIndex:           in.Rule.Index,
		RuleName:            rule.RuleName,
		RiskLevel:           rule.RiskLevel,
		RiskAttributionID:   rule.RiskAttributionID,
		RiskAttributionName: rule.RiskAttributionName,
		RuleGroupID:         rule.RuleGroupID,
		RuleGroupName:       rule.RuleGroupName,
		ReviseOpinion:       rule.ReviseOpinion,
		ConfidenceScore:     defaultConfidence,
		UserFeedback:        FeedbackNone,
		VerbatimTextList:    StringList{},
		MatchedContent:      StringList{},
		Suggestions:         StringList{},
		Issues:              StringList{},
		CreatedAt:           n.now().UTC(),
	}

	n.applyFragments(&out, in.Fragments)

	var diags []Diagnostic

	switch {
	case in.Verdict != nil:
		// Verdict wins over the evidence heuristic unconditionally.
		out.ReviewResult = ReviewFail
		if in.Verdict.Pass {
			out.ReviewResult = ReviewPass
		}
		out.RuleConfirmResult = string(out.ReviewResult)
		if len(in.Verdict.VerbatimTextList) > 0 {
			out.VerbatimTextList = append(out.VerbatimTextList, in.Verdict.VerbatimTextList...)
		}
		if in.Verdict.ReviseOpinion != "" {
			out.ReviseOpinion = in.Verdict.ReviseOpinion
		}
		out.ConfidenceScore = deterministicConfidence
		if in.Verdict.Confidence > 0 {
			out.ConfidenceScore = in.Verdict.Confidence
		}
	case in.FallbackCause != nil:
		result, annotation := n.fallback.Resolve(out.Evidence(), in.FallbackCause)
		out.ReviewResult = result
		out.RuleConfirmResult = string(result)
		out.Analysis = joinAnalysis(out.Analysis, annotation)
		diags = append(diags, Diagnostic{
			Kind:    DiagFallbackApplied,
			RuleID:  rule.RuleID,
			Message: annotation,
		})
		n.logger.Warn("fallback applied",
			"rule_id", rule.RuleID,
			"result", string(result),
			"cause", in.FallbackCause)
	default:
		out.ReviewResult = ReviewPass
		if out.Evidence().HasEvidence() {
			out.ReviewResult = ReviewFail
		}
		out.RuleConfirmResult = string(out.ReviewResult)
	}

	if out.RiskOrdinal = RiskOrdinal(out.RiskLevel); out.RiskOrdinal == RiskUnknown && out.RiskLevel != "" {
		n.logger.Debug("unrecognized risk level", "rule_id", rule.RuleID, "risk_level", out.RiskLevel)
	}
	return out, diags
}

// applyFragments merges the semantic sub-results into the record.
// List fields concatenate across fragments; scalar fields take the
// first non-empty fragment value, which outranks the rule definition.
func (n *Normalizer) applyFragments(out *CanonicalRuleResult, fragments []map[string]any) {
	for _, frag := range fragments {
		if frag == nil {
			continue
		}
		out.VerbatimTextList = append(out.VerbatimTextList,
			pickList(frag, "verbatimTextList", "verbatim_text_list", "verbatim_text")...)
		out.MatchedContent = append(out.MatchedContent,
			pickList(frag, "matchedContent", "matched_content")...)
		out.Suggestions = append(out.Suggestions,
			pickList(frag, "suggestions", "suggestion_list")...)
		out.Issues = append(out.Issues,
			pickList(frag, "issues", "issue_list")...)

		if s := pickString(frag, "riskLevel", "risk_level"); s != "" {
			out.RiskLevel = s
		}
		if s := pickString(frag, "ruleName", "rule_name"); s != "" {
			out.RuleName = s
		}
		if s := pickString(frag, "analysis", "explanation"); s != "" {
			out.Analysis = joinAnalysis(out.Analysis, s)
		}
		if s := pickString(frag, "reviseOpinion", "revise_opinion"); s != "" {
			out.ReviseOpinion = s
		}
		if f, ok := pickFloat(frag, "confidenceScore", "confidence_score", "confidence"); ok {
			out.ConfidenceScore = f
		}
	}
}

func joinAnalysis(existing, addition string) string {
	if existing == "" {
		return addition
	}
	if addition == "" {
		return existing
	}
	return existing + "; " + addition
}
