package testutil

import "github.com/astraeum/oraclecore/core"

// EventBuilder provides a fluent helper for constructing game events in
// tests. Example:
//
//	ev := NewEventBuilder(core.EventOracleChallenge, "run-1").Oracle("Nyx").Phase("puzzle").Build()
type EventBuilder struct {
	eventType string
	sessionID string
	data      map[string]any
}

// NewEventBuilder creates a builder for the given event class and session.
func NewEventBuilder(eventType, sessionID string) *EventBuilder {
	return &EventBuilder{eventType: eventType, sessionID: sessionID, data: map[string]any{}}
}

// Oracle targets the event at an oracle (chainable).
func (b *EventBuilder) Oracle(name string) *EventBuilder { b.data["oracle"] = name; return b }

// Phase overrides the phase the dispatch uses (chainable).
func (b *EventBuilder) Phase(p string) *EventBuilder { b.data["phase"] = p; return b }

// Message sets the player message payload (chainable).
func (b *EventBuilder) Message(m string) *EventBuilder { b.data["message"] = m; return b }

// Action names the triggering player action for broadcasts (chainable).
func (b *EventBuilder) Action(a string) *EventBuilder { b.data["action"] = a; return b }

// Data sets an arbitrary payload field (chainable).
func (b *EventBuilder) Data(key string, val any) *EventBuilder { b.data[key] = val; return b }

// Build returns the assembled event with a fresh ID and timestamp.
func (b *EventBuilder) Build() core.GameEvent {
	return core.NewGameEvent(b.eventType, b.sessionID, b.data)
}
