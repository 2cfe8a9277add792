// SPDX-License-Identifier: Apache-2.0
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/gremio/pkg/errors"
)

// EngineMetrics tracks turns, resolutions, and verdicts for production monitoring.
type EngineMetrics struct {
	// turnCounter tracks processed applicant turns by session state
	turnCounter metric.Int64Counter

	// intentCounter tracks resolution outcomes (resolved, ambiguous, out_of_scope)
	intentCounter metric.Int64Counter

	// dispatchCounter tracks dispatched evaluator instructions by role
	dispatchCounter metric.Int64Counter

	// resultCounter tracks accepted evaluator results
	resultCounter metric.Int64Counter

	// decisionCounter tracks final verdicts by outcome and role
	decisionCounter metric.Int64Counter

	// errorCounter tracks errors by code and component
	errorCounter metric.Int64Counter

	// decisionLatency tracks seconds from dispatch to final verdict
	decisionLatency metric.Float64Histogram

	mu sync.RWMutex
}

// NewEngineMetrics creates a new engine metrics tracker with OTEL meters.
func NewEngineMetrics(ctx context.Context) (*EngineMetrics, error) {
	meter := otel.Meter("gremio/engine")

	turnCounter, err := meter.Int64Counter(
		"gremio.turns.total",
		metric.WithDescription("Total applicant turns by session state"),
	)
	if err != nil {
		return nil, err
	}

	intentCounter, err := meter.Int64Counter(
		"gremio.intent.total",
		metric.WithDescription("Resolution outcomes by kind"),
	)
	if err != nil {
		return nil, err
	}

	dispatchCounter, err := meter.Int64Counter(
		"gremio.dispatch.instructions",
		metric.WithDescription("Dispatched evaluator instructions by role"),
	)
	if err != nil {
		return nil, err
	}

	resultCounter, err := meter.Int64Counter(
		"gremio.results.total",
		metric.WithDescription("Accepted evaluator results"),
	)
	if err != nil {
		return nil, err
	}

	decisionCounter, err := meter.Int64Counter(
		"gremio.decisions.total",
		metric.WithDescription("Final verdicts by outcome and role"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"gremio.errors.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	decisionLatency, err := meter.Float64Histogram(
		"gremio.decision.latency_seconds",
		metric.WithDescription("Seconds between dispatch and final verdict"),
	)
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		turnCounter:     turnCounter,
		intentCounter:   intentCounter,
		dispatchCounter: dispatchCounter,
		resultCounter:   resultCounter,
		decisionCounter: decisionCounter,
		errorCounter:    errorCounter,
		decisionLatency: decisionLatency,
	}, nil
}

// RecordTurn increments the turn counter for the given session state.
func (em *EngineMetrics) RecordTurn(ctx context.Context, state string) {
	if em == nil {
		return
	}
	em.mu.RLock()
	defer em.mu.RUnlock()

	em.turnCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("session.state", state),
		),
	)
}

// RecordIntent increments the resolution counter for the given outcome kind.
func (em *EngineMetrics) RecordIntent(ctx context.Context, kind, strategy string) {
	if em == nil {
		return
	}
	em.mu.RLock()
	defer em.mu.RUnlock()

	em.intentCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("intent.kind", kind),
			attribute.String("intent.strategy", strategy),
		),
	)
}

// RecordDispatch records how many evaluator instructions a role produced.
func (em *EngineMetrics) RecordDispatch(ctx context.Context, role string, count int) {
	if em == nil {
		return
	}
	em.mu.RLock()
	defer em.mu.RUnlock()

	em.dispatchCounter.Add(ctx, int64(count),
		metric.WithAttributes(
			attribute.String("role", role),
		),
	)
}

// RecordResult increments the accepted result counter.
func (em *EngineMetrics) RecordResult(ctx context.Context, role string) {
	if em == nil {
		return
	}
	em.mu.RLock()
	defer em.mu.RUnlock()

	em.resultCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("role", role),
		),
	)
}

// RecordDecision increments the verdict counter for the given outcome.
func (em *EngineMetrics) RecordDecision(ctx context.Context, outcome, role string) {
	if em == nil {
		return
	}
	em.mu.RLock()
	defer em.mu.RUnlock()

	em.decisionCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("decision.outcome", outcome),
			attribute.String("role", role),
		),
	)
}

// RecordDecisionLatency records the seconds between dispatch and verdict.
func (em *EngineMetrics) RecordDecisionLatency(ctx context.Context, role string, seconds float64) {
	if em == nil {
		return
	}
	em.mu.RLock()
	defer em.mu.RUnlock()

	em.decisionLatency.Record(ctx, seconds,
		metric.WithAttributes(
			attribute.String("role", role),
		),
	)
}

// RecordErrorMetric increments the error counter for the given error and component.
func (em *EngineMetrics) RecordErrorMetric(ctx context.Context, err error, component string) {
	if em == nil || err == nil {
		return
	}
	em.mu.RLock()
	defer em.mu.RUnlock()

	if ge, ok := err.(*errors.GremioError); ok {
		em.errorCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("error.code", string(ge.Code)),
				attribute.String("component", component),
				attribute.String("recoverable", ge.RecoverableString()),
			),
		)
		return
	}
	em.errorCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error.code", "UNKNOWN"),
			attribute.String("component", component),
			attribute.String("recoverable", "unknown"),
		),
	)
}
