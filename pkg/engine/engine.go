// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine drives the assessment cycle: an applicant utterance becomes
// either a clarification or a set of evaluator dispatch instructions, and the
// gathered evaluator results become a final PASS/FAIL decision. The engine
// holds no per-session state of its own; hosts pass the session in and
// serialize calls per session.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/gremio/pkg/audit"
	"github.com/jllopis/gremio/pkg/catalog"
	"github.com/jllopis/gremio/pkg/core"
	"github.com/jllopis/gremio/pkg/dispatch"
	gerrors "github.com/jllopis/gremio/pkg/errors"
	"github.com/jllopis/gremio/pkg/intent"
	"github.com/jllopis/gremio/pkg/telemetry"
	"github.com/jllopis/gremio/pkg/verdict"
)

// Engine coordinates intent resolution, dispatch planning, and result
// aggregation over a shared role catalog.
type Engine struct {
	mu       sync.RWMutex // guards catalog and resolver across reloads
	catalog  *catalog.Catalog
	resolver intent.Resolver
	strategy string

	auditStore audit.Store
	emitter    core.EventEmitter
	metrics    *telemetry.EngineMetrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures the engine.
type Option func(*Engine) error

// WithAuditStore records every delivered decision to the given store.
func WithAuditStore(store audit.Store) Option {
	return func(e *Engine) error {
		e.auditStore = store
		return nil
	}
}

// WithEventEmitter publishes lifecycle events to the given emitter.
func WithEventEmitter(emitter core.EventEmitter) Option {
	return func(e *Engine) error {
		if emitter == nil {
			return fmt.Errorf("emitter is nil")
		}
		e.emitter = emitter
		return nil
	}
}

// WithMetrics attaches OTEL counters for turns, intents, and decisions.
func WithMetrics(metrics *telemetry.EngineMetrics) Option {
	return func(e *Engine) error {
		e.metrics = metrics
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			return fmt.Errorf("logger is nil")
		}
		e.logger = logger
		return nil
	}
}

// WithStrategyName labels metrics and logs with the resolver strategy in use.
func WithStrategyName(name string) Option {
	return func(e *Engine) error {
		e.strategy = name
		return nil
	}
}

// New creates an engine over a validated catalog and a resolver.
func New(cat *catalog.Catalog, resolver intent.Resolver, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, gerrors.New(gerrors.CodeConfig, "catalog is required", nil)
	}
	if resolver == nil {
		return nil, gerrors.New(gerrors.CodeConfig, "resolver is required", nil)
	}
	e := &Engine{
		catalog:  cat,
		resolver: resolver,
		strategy: "keyword",
		emitter:  core.NoopEventEmitter{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("gremio/engine"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Reload swaps the role catalog and resolver, typically after the catalog
// file changed on disk. Sessions already dispatched keep the plans and
// outstanding evaluator sets they were dispatched with.
func (e *Engine) Reload(cat *catalog.Catalog, resolver intent.Resolver) error {
	if cat == nil {
		return gerrors.New(gerrors.CodeConfig, "catalog is required", nil)
	}
	if resolver == nil {
		return gerrors.New(gerrors.CodeConfig, "resolver is required", nil)
	}
	e.mu.Lock()
	e.catalog = cat
	e.resolver = resolver
	e.mu.Unlock()
	e.logger.Info("engine.catalog.reloaded", "role_count", len(cat.Roles))
	return nil
}

// SessionCreated publishes the session lifecycle start event. Hosts call it
// once when they mint a session for a previously unseen identifier.
func (e *Engine) SessionCreated(ctx context.Context, sess *core.Session) {
	e.emitter.Emit(ctx, core.NewEvent(core.EventSessionCreated, sess.ID, "", nil))
	e.logger.InfoContext(ctx, "engine.session.created", "session_id", sess.ID)
}

func (e *Engine) snapshot() (*catalog.Catalog, intent.Resolver) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog, e.resolver
}

// HandleMessage processes one applicant utterance for the session and
// returns the dispatch-turn reply. Instructions is non-empty only when the
// utterance resolved to exactly one catalog role and the session moved to
// DISPATCHED.
func (e *Engine) HandleMessage(ctx context.Context, sess *core.Session, utterance string) (*TurnReply, error) {
	ctx, turnID := core.EnsureTurnID(ctx)
	ctx, span := e.tracer.Start(ctx, "Engine.HandleMessage",
		trace.WithAttributes(telemetry.SessionAttributes(sess.ID, string(sess.State))...),
	)
	defer span.End()

	e.metrics.RecordTurn(ctx, string(sess.State))

	switch sess.State {
	case core.StateDispatched:
		e.logger.InfoContext(ctx, "engine.turn.in_progress",
			"session_id", sess.ID, "turn_id", turnID)
		return &TurnReply{
			ResponseToUser: msgInProgress,
			Instructions:   []core.DispatchInstruction{},
		}, nil
	case core.StateCompleted:
		return &TurnReply{
			ResponseToUser: decisionText(sess.ResolvedRole, sess.Decision),
			Instructions:   []core.DispatchInstruction{},
		}, nil
	}

	if isGreeting(utterance) {
		e.logger.InfoContext(ctx, "engine.turn.greeting", "session_id", sess.ID)
		return &TurnReply{
			ResponseToUser: msgWelcome,
			Instructions:   []core.DispatchInstruction{},
		}, nil
	}

	cat, resolver := e.snapshot()
	outcome, err := resolver.Resolve(ctx, utterance)
	if err != nil {
		e.metrics.RecordErrorMetric(ctx, err, "intent")
		return nil, gerrors.New(gerrors.CodeInternal, "intent resolution failed", err).
			WithContext("session_id", sess.ID)
	}
	e.metrics.RecordIntent(ctx, string(outcome.Kind), e.strategy)
	span.SetAttributes(telemetry.IntentAttributes(
		string(outcome.Kind), outcome.Role, e.strategy, outcome.Confidence)...)

	switch outcome.Kind {
	case intent.KindOutOfScope:
		e.emitter.Emit(ctx, core.NewEvent(core.EventIntentOffTopic, sess.ID, "", nil))
		e.logger.InfoContext(ctx, "engine.intent.out_of_scope", "session_id", sess.ID)
		return &TurnReply{
			ResponseToUser: msgRedirect,
			Instructions:   []core.DispatchInstruction{},
		}, nil

	case intent.KindAmbiguous:
		e.emitter.Emit(ctx, core.NewEvent(core.EventIntentAmbiguous, sess.ID, "", nil))
		e.logger.InfoContext(ctx, "engine.intent.ambiguous", "session_id", sess.ID)
		return &TurnReply{
			ResponseToUser: clarifyText(cat.RoleNames()),
			Instructions:   []core.DispatchInstruction{},
		}, nil
	}

	// Resolved: plan and dispatch.
	instructions, err := dispatch.PlanFor(cat, outcome.Role)
	if err != nil {
		e.metrics.RecordErrorMetric(ctx, err, "dispatch")
		return nil, err
	}
	if err := sess.MarkDispatched(outcome.Role, instructions); err != nil {
		e.metrics.RecordErrorMetric(ctx, err, "session")
		return nil, err
	}

	e.emitter.Emit(ctx, core.NewEvent(core.EventIntentResolved, sess.ID, outcome.Role, nil))
	e.emitter.Emit(ctx, core.NewEvent(core.EventDispatchPlanned, sess.ID, outcome.Role,
		map[string]any{"instruction_count": len(instructions)}))
	e.metrics.RecordDispatch(ctx, outcome.Role, len(instructions))
	span.SetAttributes(telemetry.DispatchAttributes(outcome.Role, len(instructions))...)
	e.logger.InfoContext(ctx, "engine.dispatch.planned",
		"session_id", sess.ID,
		"role", outcome.Role,
		"instruction_count", len(instructions))

	return &TurnReply{
		ResponseToUser: dispatchText(outcome.Role),
		Instructions:   instructions,
	}, nil
}

// HandleResults records evaluator results for the session and, once every
// dispatched evaluator has reported, aggregates them into the final decision.
// A call on an already completed session returns the stored decision again.
func (e *Engine) HandleResults(ctx context.Context, sess *core.Session, turn ResultsTurn) (*DecisionReply, error) {
	ctx, turnID := core.EnsureTurnID(ctx)
	ctx, span := e.tracer.Start(ctx, "Engine.HandleResults",
		trace.WithAttributes(telemetry.SessionAttributes(sess.ID, string(sess.State))...),
	)
	defer span.End()

	e.metrics.RecordTurn(ctx, string(sess.State))

	switch sess.State {
	case core.StateCompleted:
		// Idempotent re-delivery of the stored decision.
		return &DecisionReply{
			ResponseToUser:    decisionText(sess.ResolvedRole, sess.Decision),
			FinalDecisionData: *sess.Decision,
		}, nil
	case core.StateAwaitingRole:
		return nil, gerrors.New(gerrors.CodeSessionState, "no assessment has been dispatched", nil).
			WithContext("session_id", sess.ID).
			WithContext("state", string(sess.State))
	}

	if turn.RoleAssessed != "" && !strings.EqualFold(turn.RoleAssessed, sess.ResolvedRole) {
		return nil, gerrors.New(gerrors.CodeInvalidInput, "results are for a different role", nil).
			WithContext("session_id", sess.ID).
			WithContext("role_assessed", turn.RoleAssessed).
			WithContext("resolved_role", sess.ResolvedRole)
	}

	for _, result := range turn.Results {
		if !sess.RecordResult(result) {
			e.logger.WarnContext(ctx, "engine.result.unexpected",
				"session_id", sess.ID, "agent_name", result.AgentName)
			continue
		}
		e.emitter.Emit(ctx, core.NewEvent(core.EventResultRecorded, sess.ID, sess.ResolvedRole,
			map[string]any{"agent_name": result.AgentName}))
		e.metrics.RecordResult(ctx, sess.ResolvedRole)
	}
	span.SetAttributes(telemetry.ResultAttributes("", len(sess.Outstanding))...)

	if missing := sess.OutstandingAgents(); len(missing) > 0 {
		e.logger.InfoContext(ctx, "engine.results.partial",
			"session_id", sess.ID, "turn_id", turnID, "missing", missing)
		return nil, gerrors.New(gerrors.CodeIncompleteResults, "evaluators still outstanding", nil).
			WithContext("session_id", sess.ID).
			WithContext("missing", missing)
	}

	cat, _ := e.snapshot()
	profile, ok := cat.Lookup(sess.ResolvedRole)
	if !ok {
		return nil, gerrors.New(gerrors.CodeConfig, "resolved role missing from catalog", nil).
			WithContext("session_id", sess.ID).
			WithContext("role", sess.ResolvedRole)
	}

	decision, err := verdict.Aggregate(profile, sess.Results)
	if err != nil {
		e.metrics.RecordErrorMetric(ctx, err, "verdict")
		return nil, err
	}
	if err := sess.Complete(decision); err != nil {
		return nil, err
	}

	e.emitter.Emit(ctx, core.NewEvent(core.EventDecisionReached, sess.ID, sess.ResolvedRole,
		map[string]any{"outcome": string(decision.Outcome)}))
	e.metrics.RecordDecision(ctx, string(decision.Outcome), sess.ResolvedRole)
	e.metrics.RecordDecisionLatency(ctx, sess.ResolvedRole,
		time.Since(sess.CreatedAt).Seconds())
	span.SetAttributes(telemetry.DecisionAttributes(string(decision.Outcome), sess.ResolvedRole)...)
	e.logger.InfoContext(ctx, "engine.decision.reached",
		"session_id", sess.ID,
		"role", sess.ResolvedRole,
		"outcome", string(decision.Outcome))

	if e.auditStore != nil {
		if err := e.auditStore.Record(ctx, audit.NewRecord(sess)); err != nil {
			// The decision stands even when the trail write fails.
			e.logger.ErrorContext(ctx, "engine.audit.record_failed",
				"session_id", sess.ID, "error", err)
		}
	}

	return &DecisionReply{
		ResponseToUser:    decisionText(sess.ResolvedRole, &decision),
		FinalDecisionData: decision,
	}, nil
}
