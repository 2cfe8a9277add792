// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry integration with rich attributes
// for assessment observability.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for Gremio assessment telemetry.
// These follow OpenTelemetry naming conventions where applicable.
const (
	// Session attributes
	AttrSessionID    = "gremio.session.id"
	AttrSessionState = "gremio.session.state"
	AttrTurnID       = "gremio.turn.id"

	// Intent attributes
	AttrIntentOutcome    = "gremio.intent.outcome"
	AttrIntentRole       = "gremio.intent.role"
	AttrIntentConfidence = "gremio.intent.confidence"
	AttrIntentStrategy   = "gremio.intent.strategy"

	// Dispatch attributes
	AttrDispatchRole  = "gremio.dispatch.role"
	AttrDispatchCount = "gremio.dispatch.instruction_count"

	// Result attributes
	AttrResultAgent   = "gremio.result.agent"
	AttrResultPending = "gremio.result.pending_count"

	// Decision attributes
	AttrDecisionOutcome = "gremio.decision.outcome"
	AttrDecisionRole    = "gremio.decision.role"

	// Event attributes
	AttrEventType    = "gremio.event.type"
	AttrEventPayload = "gremio.event.payload"
)

// SessionAttributes returns common attributes for session spans.
func SessionAttributes(sessionID, state string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if sessionID != "" {
		attrs = append(attrs, attribute.String(AttrSessionID, sessionID))
	}
	if state != "" {
		attrs = append(attrs, attribute.String(AttrSessionState, state))
	}
	return attrs
}

// IntentAttributes returns attributes describing a resolution outcome.
func IntentAttributes(outcome, role, strategy string, confidence float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrIntentOutcome, outcome),
	}
	if role != "" {
		attrs = append(attrs, attribute.String(AttrIntentRole, role))
	}
	if strategy != "" {
		attrs = append(attrs, attribute.String(AttrIntentStrategy, strategy))
	}
	if confidence > 0 {
		attrs = append(attrs, attribute.Float64(AttrIntentConfidence, confidence))
	}
	return attrs
}

// DispatchAttributes returns attributes for a dispatch plan.
func DispatchAttributes(role string, instructionCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrDispatchRole, role),
		attribute.Int(AttrDispatchCount, instructionCount),
	}
}

// ResultAttributes returns attributes for an incoming evaluator result.
func ResultAttributes(agent string, pending int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrResultPending, pending),
	}
	if agent != "" {
		attrs = append(attrs, attribute.String(AttrResultAgent, agent))
	}
	return attrs
}

// DecisionAttributes returns attributes for a final verdict.
func DecisionAttributes(outcome, role string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrDecisionOutcome, outcome),
	}
	if role != "" {
		attrs = append(attrs, attribute.String(AttrDecisionRole, role))
	}
	return attrs
}
