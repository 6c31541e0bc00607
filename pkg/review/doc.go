// Package review defines the domain model for contract-review rule
// confirmation: rule definitions as received from callers, the canonical
// per-rule result record, the classifier that partitions rules between
// the semantic and deterministic judge tracks, and the normalizer that
// folds heterogeneous judge output into canonical records.
//
// The package is transport-free. HTTP clients for the judge services
// live in pkg/judges; orchestration lives in pkg/pipeline.
//
// # Rule classification
//
// Callers mark a rule for the deterministic rule-engine track by
// embedding the selector key "censoredSearchEngine" (or its snake_case
// form) anywhere in the rule document with the value 1. Rules without
// the selector, or with any other value, take the semantic track:
//
//	partition := review.NewClassifier(nil).Partition(rules)
//	// partition.Deterministic + partition.Semantic cover every rule once
//
// # Normalization
//
// A Normalizer produces exactly one CanonicalRuleResult per requested
// rule, in request order, harmonizing camelCase and snake_case field
// aliases with the precedence: judge fragment, then rule definition,
// then default.
package review
