package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"veritas-hq/minos/pkg/audit"
	"veritas-hq/minos/pkg/judges/ruleengine"
	"veritas-hq/minos/pkg/judges/semantic"
	"veritas-hq/minos/pkg/review"
	"veritas-hq/minos/pkg/store"
	"veritas-hq/minos/pkg/telemetry/logging"
	"veritas-hq/minos/pkg/telemetry/metrics"
)

// Default per-judge timeouts. Each call is bounded independently of
// the caller's context.
const (
	DefaultSemanticTimeout = 60 * time.Second
	DefaultEngineTimeout   = 30 * time.Second
)

// SemanticJudge is the semantic judge surface the orchestrator needs.
type SemanticJudge interface {
	Review(ctx context.Context, req semantic.Request) (semantic.ResultSet, error)
}

// DeterministicJudge is the rule-engine surface the orchestrator
// needs.
type DeterministicJudge interface {
	Confirm(ctx context.Context, req ruleengine.Request) (map[int64]*review.Verdict, error)
}

// Batch is one review request.
type Batch struct {
	SessionID   string                  `json:"sessionId"`
	ContractID  string                  `json:"contractId"`
	ReviewStage string                  `json:"reviewStage"`
	Rules       []review.RuleDefinition `json:"rules"`
}

// Config tunes the orchestrator.
type Config struct {
	// SemanticTimeout bounds the semantic judge call.
	SemanticTimeout time.Duration
	// EngineTimeout bounds the rule-engine call.
	EngineTimeout time.Duration
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.SemanticTimeout <= 0 {
		c.SemanticTimeout = DefaultSemanticTimeout
	}
	if c.EngineTimeout <= 0 {
		c.EngineTimeout = DefaultEngineTimeout
	}
}

// Orchestrator runs review batches through classification, the two
// judges, normalization, persistence, and ordered event emission.
type Orchestrator struct {
	cfgMu      sync.RWMutex
	config     Config
	classifier *review.Classifier
	normalizer *review.Normalizer
	semantic   SemanticJudge
	engine     DeterministicJudge
	store      store.Store
	trail      *audit.Trail
	collector  *metrics.Collector
	logger     *slog.Logger
}

// New creates an Orchestrator. The store is required; trail and
// collector may be nil, and a nil logger falls back to the process
// default.
func New(cfg Config, sem SemanticJudge, eng DeterministicJudge, st store.Store, trail *audit.Trail, collector *metrics.Collector, logger *slog.Logger) *Orchestrator {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "pipeline")
	return &Orchestrator{
		config:     cfg,
		classifier: review.NewClassifier(logger),
		normalizer: review.NewNormalizer(logger),
		semantic:   sem,
		engine:     eng,
		store:      st,
		trail:      trail,
		collector:  collector,
		logger:     logger,
	}
}

// SetTimeouts updates the per-judge call timeouts for subsequent
// batches. Non-positive values fall back to the defaults.
func (o *Orchestrator) SetTimeouts(semanticTimeout, engineTimeout time.Duration) {
	cfg := Config{SemanticTimeout: semanticTimeout, EngineTimeout: engineTimeout}
	cfg.ApplyDefaults()
	o.cfgMu.Lock()
	o.config = cfg
	o.cfgMu.Unlock()
}

func (o *Orchestrator) timeouts() Config {
	o.cfgMu.RLock()
	defer o.cfgMu.RUnlock()
	return o.config
}

// Run processes one batch. Events flow to sink as described in the
// package comment; the returned slice holds the canonical results in
// request order. The only error condition is an empty rule list —
// every other anomaly is reported as a diagnostic on the final event.
func (o *Orchestrator) Run(ctx context.Context, batch Batch, sink Sink) ([]review.CanonicalRuleResult, error) {
	start := time.Now()

	if len(batch.Rules) == 0 {
		o.emitGuarded(ctx, sink, newEvent(EventError, ErrorData{
			SessionID: batch.SessionID,
			Error:     "empty_batch",
			Message:   review.ErrEmptyBatch.Error(),
		}))
		o.collector.Batch().ObserveBatch("rejected", time.Since(start))
		o.trail.Record(context.WithoutCancel(ctx), audit.Entry{
			Kind:      audit.KindBatchRejected,
			SessionID: batch.SessionID,
		})
		return nil, review.ErrEmptyBatch
	}

	if batch.SessionID == "" {
		batch.SessionID = uuid.NewString()
	}
	ctx = logging.WithSession(ctx, batch.SessionID)
	ctx = logging.WithContract(ctx, batch.ContractID)

	partition := o.classifier.Partition(batch.Rules)
	o.logger.InfoContext(ctx, "batch accepted",
		"total_rules", partition.Total(),
		"semantic", len(partition.Semantic),
		"deterministic", len(partition.Deterministic))
	o.trail.Record(context.WithoutCancel(ctx), audit.Entry{
		Kind:      audit.KindBatchStarted,
		SessionID: batch.SessionID,
		Detail: map[string]any{
			"contract_id":   batch.ContractID,
			"total_rules":   partition.Total(),
			"semantic":      len(partition.Semantic),
			"deterministic": len(partition.Deterministic),
		},
	})

	var (
		diagMu      sync.Mutex
		diagnostics = append([]review.Diagnostic{}, partition.Diagnostics...)
	)
	addDiagnostics := func(diags ...review.Diagnostic) {
		if len(diags) == 0 {
			return
		}
		diagMu.Lock()
		diagnostics = append(diagnostics, diags...)
		diagMu.Unlock()
	}

	em := newEmitter(ctx, sink, batch.SessionID, partition.Total(), o.logger)

	// The deterministic track must not normalize before the semantic
	// result set exists: when the engine fails, fallback evidence for
	// engine-routed rules comes from the semantic fragments.
	var (
		fragments semantic.ResultSet
		fragReady = make(chan struct{})
		engine    EngineReport
	)

	var wg sync.WaitGroup
	if len(partition.Semantic) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fragments = o.querySemantic(ctx, batch, partition.Semantic, addDiagnostics)
			close(fragReady)
			o.resolveSemanticRules(ctx, batch, partition.Semantic, fragments, em, addDiagnostics)
		}()
	} else {
		fragments = semantic.ResultSet{}
		close(fragReady)
	}
	if len(partition.Deterministic) > 0 {
		engine.Invoked = true
		engine.RoutedRules = len(partition.Deterministic)
		wg.Add(1)
		go func() {
			defer wg.Done()
			verdicts, err := o.confirmRules(ctx, batch, partition.Deterministic, addDiagnostics)
			engine.Status = EngineStatusOK
			if err != nil {
				engine.Status = err.Error()
			}
			<-fragReady
			o.resolveDeterministicRules(ctx, batch, partition.Deterministic, verdicts, err, fragments, em, addDiagnostics)
		}()
	} else {
		engine.Status = EngineStatusNotInvoked
	}
	wg.Wait()

	diagMu.Lock()
	finalDiags := append([]review.Diagnostic{}, diagnostics...)
	diagMu.Unlock()

	results := em.finish(finalDiags, engine)

	o.collector.Batch().ObserveBatch("completed", time.Since(start))
	o.trail.Record(context.WithoutCancel(ctx), audit.Entry{
		Kind:      audit.KindBatchCompleted,
		SessionID: batch.SessionID,
		Detail: map[string]any{
			"results":     len(results),
			"diagnostics": len(finalDiags),
			"duration_ms": time.Since(start).Milliseconds(),
		},
	})
	o.logger.InfoContext(ctx, "batch completed",
		"results", len(results),
		"diagnostics", len(finalDiags),
		"duration_ms", time.Since(start).Milliseconds())
	return results, nil
}

// querySemantic calls the semantic judge once for the whole semantic
// track. A judge failure is recorded as a diagnostic and yields an
// empty result set, so unanswered rules fall through to the evidence
// heuristic with no fragments.
func (o *Orchestrator) querySemantic(ctx context.Context, batch Batch, rules []review.ClassifiedRule, addDiagnostics func(...review.Diagnostic)) semantic.ResultSet {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeouts().SemanticTimeout)
	defer cancel()

	defs := make([]review.RuleDefinition, len(rules))
	for i, cr := range rules {
		defs[i] = cr.Rule
	}

	callStart := time.Now()
	results, err := o.semantic.Review(callCtx, semantic.Request{
		ContractID:  batch.ContractID,
		ReviewStage: batch.ReviewStage,
		ReviewRules: defs,
	})
	o.collector.Judge().ObserveCall("semantic", time.Since(callStart), err)
	if err != nil {
		o.collector.Judge().ObserveError("semantic", errorKind(err))
		addDiagnostics(review.Diagnostic{
			Kind:    review.DiagJudgeFailure,
			Message: "semantic judge failed, rules resolved without fragments: " + err.Error(),
		})
		o.logger.WarnContext(ctx, "semantic judge failed", "error", err)
		results = nil
	}
	if results == nil {
		results = semantic.ResultSet{}
	}
	return results
}

// resolveSemanticRules normalizes, persists, and emits every
// semantic-track rule from the fragments the judge returned.
func (o *Orchestrator) resolveSemanticRules(ctx context.Context, batch Batch, rules []review.ClassifiedRule, fragments semantic.ResultSet, em *emitter, addDiagnostics func(...review.Diagnostic)) {
	for _, cr := range rules {
		out, diags := o.normalizer.Normalize(review.NormalizeInput{
			Rule:       cr,
			SessionID:  batch.SessionID,
			ContractID: batch.ContractID,
			Fragments:  fragments[cr.Rule.RuleID],
		})
		addDiagnostics(diags...)
		o.collector.Batch().ObserveRule("semantic", string(out.ReviewResult))
		o.persist(ctx, out, addDiagnostics)
		em.complete(out)
	}
}

// confirmRules sends the whole deterministic batch to the rule
// engine. The call is single-shot; the error comes back so the caller
// can switch the track to the fallback policy.
func (o *Orchestrator) confirmRules(ctx context.Context, batch Batch, rules []review.ClassifiedRule, addDiagnostics func(...review.Diagnostic)) (map[int64]*review.Verdict, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeouts().EngineTimeout)
	defer cancel()

	defs := make([]review.RuleDefinition, len(rules))
	for i, cr := range rules {
		defs[i] = cr.Rule
	}

	callStart := time.Now()
	verdicts, err := o.engine.Confirm(callCtx, ruleengine.Request{
		ContractID:        batch.ContractID,
		ReviewRuleDTOList: defs,
	})
	o.collector.Judge().ObserveCall("rule_engine", time.Since(callStart), err)
	if err != nil {
		o.collector.Judge().ObserveError("rule_engine", errorKind(err))
		addDiagnostics(review.Diagnostic{
			Kind:    review.DiagJudgeFailure,
			Message: "rule engine failed, fallback policy applied: " + err.Error(),
		})
		o.logger.WarnContext(ctx, "rule engine failed, applying fallback", "error", err)
	}
	return verdicts, err
}

// resolveDeterministicRules normalizes, persists, and emits every
// deterministic-track rule. On a failed engine call the fallback
// policy decides each rule from the semantic fragments extracted for
// it, so evidence found by the semantic judge still fails the rule.
func (o *Orchestrator) resolveDeterministicRules(ctx context.Context, batch Batch, rules []review.ClassifiedRule, verdicts map[int64]*review.Verdict, callErr error, fragments semantic.ResultSet, em *emitter, addDiagnostics func(...review.Diagnostic)) {
	for _, cr := range rules {
		in := review.NormalizeInput{
			Rule:       cr,
			SessionID:  batch.SessionID,
			ContractID: batch.ContractID,
			Fragments:  fragments[cr.Rule.RuleID],
		}
		if callErr != nil {
			in.FallbackCause = callErr
		} else {
			in.Verdict = verdicts[cr.Rule.RuleID]
		}
		out, diags := o.normalizer.Normalize(in)
		addDiagnostics(diags...)
		if in.FallbackCause != nil {
			o.collector.Batch().ObserveFallback()
			o.trail.Record(context.WithoutCancel(ctx), audit.Entry{
				Kind:      audit.KindFallback,
				SessionID: batch.SessionID,
				RuleID:    cr.Rule.RuleID,
				Detail:    map[string]any{"result": string(out.ReviewResult)},
			})
		}
		o.collector.Batch().ObserveRule("deterministic", string(out.ReviewResult))
		o.persist(ctx, out, addDiagnostics)
		em.complete(out)
	}
}

// persist saves one record. Duplicates are logged and surfaced as
// diagnostics, never as failures; persistence uses a detached context
// so results survive a client disconnect.
func (o *Orchestrator) persist(ctx context.Context, result review.CanonicalRuleResult, addDiagnostics func(...review.Diagnostic)) {
	saveCtx := context.WithoutCancel(ctx)
	err := o.store.Save(saveCtx, result)
	o.collector.Store().ObserveOperation("save", ignoreConflict(err))
	if err == nil {
		return
	}

	var conflict *review.PersistenceConflictError
	if errors.As(err, &conflict) {
		o.collector.Store().ObserveDuplicateSkip()
		addDiagnostics(review.Diagnostic{
			Kind:    review.DiagPersistenceSkip,
			RuleID:  result.RuleID,
			Message: conflict.Error(),
		})
		o.trail.Record(saveCtx, audit.Entry{
			Kind:      audit.KindDuplicateSkip,
			SessionID: result.SessionID,
			RuleID:    result.RuleID,
		})
		return
	}

	// Real storage failures are non-fatal too: the result was already
	// produced and emitted, only its durability suffered.
	addDiagnostics(review.Diagnostic{
		Kind:    review.DiagPersistenceSkip,
		RuleID:  result.RuleID,
		Message: "result not persisted: " + err.Error(),
	})
	o.logger.ErrorContext(ctx, "result persistence failed",
		"rule_id", result.RuleID, "error", err)
}

func (o *Orchestrator) emitGuarded(ctx context.Context, sink Sink, event Event) {
	select {
	case <-ctx.Done():
		return
	default:
	}
	if err := sink.Emit(event); err != nil {
		o.logger.Warn("event emission failed", "event", string(event.Event), "error", err)
	}
}

// errorKind buckets judge errors for metrics labels.
func errorKind(err error) string {
	var (
		transport *review.JudgeTransportError
		malformed *review.JudgeResponseMalformedError
		rejected  *review.JudgeStatusRejectedError
	)
	switch {
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &malformed):
		return "malformed"
	case errors.As(err, &rejected):
		return "rejected"
	default:
		return "other"
	}
}

// ignoreConflict maps duplicate-skip conflicts to success for the
// operation counter.
func ignoreConflict(err error) error {
	var conflict *review.PersistenceConflictError
	if errors.As(err, &conflict) {
		return nil
	}
	return err
}
