// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

package assesstest

import (
	"context"
	"sync"

	"github.com/jllopis/gremio/pkg/core"
)

// EventCollector records emitted events for later inspection. It is safe for
// concurrent use.
type EventCollector struct {
	mu     sync.Mutex
	events []core.Event
}

// NewEventCollector creates an empty collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{}
}

// Emit implements core.EventEmitter.
func (c *EventCollector) Emit(_ context.Context, event core.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Events returns a copy of all recorded events.
func (c *EventCollector) Events() []core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Event, len(c.events))
	copy(out, c.events)
	return out
}

// ByType returns the recorded events of the given type.
func (c *EventCollector) ByType(eventType core.EventType) []core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []core.Event
	for _, event := range c.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// Count returns the number of recorded events of the given type.
func (c *EventCollector) Count(eventType core.EventType) int {
	return len(c.ByType(eventType))
}
