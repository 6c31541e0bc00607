package review

import "fmt"

// FallbackPolicy resolves deterministic-track rules locally when the
// rule-engine call fails as a whole. The policy is evidence-based:
// a rule with no usable evidence passes, a rule with evidence fails.
// Every fallback record carries an annotation naming the cause so the
// degraded origin of the result is visible downstream.
type FallbackPolicy struct{}

// Resolve returns the fallback outcome for one rule given its combined
// evidence and the rule-engine failure that triggered the fallback.
// Entries that are empty or whitespace-only do not count as evidence.
func (FallbackPolicy) Resolve(evidence StringList, cause error) (ReviewResult, string) {
	result := ReviewPass
	if evidence.HasEvidence() {
		result = ReviewFail
	}
	annotation := fmt.Sprintf("rule engine unavailable, evidence fallback applied: %v", cause)
	return result, annotation
}
