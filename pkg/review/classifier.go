package review

import (
	"fmt"
	"log/slog"
	"sort"
)

// Track identifies which judge service confirms a rule.
type Track int

const (
	// TrackSemantic routes a rule to the LLM-backed semantic judge.
	TrackSemantic Track = iota
	// TrackDeterministic routes a rule to the rule-engine judge.
	TrackDeterministic
)

// String implements fmt.Stringer for log output.
func (t Track) String() string {
	if t == TrackDeterministic {
		return "deterministic"
	}
	return "semantic"
}

// Selector keys that mark a rule for the deterministic track. The
// value 1 means deterministic; anything else (or absence) means
// semantic. The key may appear at any depth of the rule document,
// including inside decoded conditionInfo payloads.
const (
	selectorKeyCamel = "censoredSearchEngine"
	selectorKeySnake = "censored_search_engine"
)

// ClassifiedRule is a rule bound to its original request position and
// assigned track.
type ClassifiedRule struct {
	Rule  RuleDefinition
	Index int
	Track Track
}

// Partition is the classifier output: a complete, disjoint split of
// the input rules. Every input rule appears on exactly one track with
// its original index preserved.
type Partition struct {
	Semantic      []ClassifiedRule
	Deterministic []ClassifiedRule
	Diagnostics   []Diagnostic
}

// Total returns the number of rules across both tracks.
func (p Partition) Total() int {
	return len(p.Semantic) + len(p.Deterministic)
}

// Classifier partitions review rules between the two judge tracks by
// searching each rule document for the engine selector.
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier creates a Classifier. A nil logger falls back to the
// process default.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger.With("component", "review.classifier")}
}

// Partition assigns each rule to a track. When the selector occurs
// more than once in a document with conflicting values, the first
// occurrence in depth-first order wins and a classification-ambiguity
// diagnostic is recorded; classification never fails.
func (c *Classifier) Partition(rules []RuleDefinition) Partition {
	var p Partition
	for i, rule := range rules {
		values := collectSelectorValues(rule.Raw, nil)
		track := TrackSemantic
		if len(values) > 0 && values[0] {
			track = TrackDeterministic
		}
		if conflicting(values) {
			p.Diagnostics = append(p.Diagnostics, Diagnostic{
				Kind:   DiagClassificationAmbiguity,
				RuleID: rule.RuleID,
				Message: fmt.Sprintf("rule %d carries conflicting engine selectors; first occurrence (%s) used",
					rule.RuleID, track),
			})
			c.logger.Warn("conflicting engine selectors",
				"rule_id", rule.RuleID,
				"occurrences", len(values),
				"track", track.String())
		}
		cr := ClassifiedRule{Rule: rule, Index: i, Track: track}
		if track == TrackDeterministic {
			p.Deterministic = append(p.Deterministic, cr)
		} else {
			p.Semantic = append(p.Semantic, cr)
		}
	}
	return p
}

// collectSelectorValues walks the document depth-first and appends the
// normalized value (true = deterministic) of every selector occurrence.
func collectSelectorValues(v any, acc []bool) []bool {
	switch node := v.(type) {
	case map[string]any:
		for _, key := range []string{selectorKeyCamel, selectorKeySnake} {
			if raw, ok := node[key]; ok {
				acc = append(acc, selectorMeansDeterministic(raw))
			}
		}
		// Sorted keys keep the occurrence order stable across runs;
		// map iteration order would otherwise make ties random.
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			acc = collectSelectorValues(node[k], acc)
		}
	case []any:
		for _, child := range node {
			acc = collectSelectorValues(child, acc)
		}
	}
	return acc
}

// selectorMeansDeterministic normalizes a selector value: the number 1
// or the string "1" selects the rule engine, everything else does not.
func selectorMeansDeterministic(v any) bool {
	if n, ok := asInt(v); ok {
		return n == 1
	}
	return false
}

func conflicting(values []bool) bool {
	if len(values) < 2 {
		return false
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return true
		}
	}
	return false
}
