package core

import (
	"context"
	"time"
)

// EventType identifies a semantic event emitted by the engine.
type EventType string

const (
	EventSessionCreated  EventType = "session.created"
	EventIntentResolved  EventType = "intent.resolved"
	EventIntentAmbiguous EventType = "intent.ambiguous"
	EventIntentOffTopic  EventType = "intent.out_of_scope"
	EventDispatchPlanned EventType = "dispatch.planned"
	EventResultRecorded  EventType = "result.recorded"
	EventDecisionReached EventType = "decision.reached"
)

// Event captures a semantic logging/streaming event.
type Event struct {
	Type      EventType
	SessionID string
	Role      string
	Timestamp time.Time
	Payload   map[string]any
}

// EventEmitter receives semantic events.
type EventEmitter interface {
	Emit(ctx context.Context, event Event)
}

// NoopEventEmitter is a default no-op implementation.
type NoopEventEmitter struct{}

// Emit implements EventEmitter.
func (NoopEventEmitter) Emit(_ context.Context, _ Event) {}

// NewEvent builds a default event with timestamp.
func NewEvent(eventType EventType, sessionID, role string, payload map[string]any) Event {
	return Event{
		Type:      eventType,
		SessionID: sessionID,
		Role:      role,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
