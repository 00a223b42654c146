package core

import "time"

// Event types routed by the orchestrator.
const (
	EventOracleChallenge = "oracle_challenge"
	EventPlayerAction    = "player_action"
	EventOracleDefeated  = "oracle_defeated"
)

// GameEvent is the inbound envelope handed to the orchestrator by the event
// delivery collaborator. The engine tolerates duplicate delivery: every
// mutating operation it triggers is idempotent.
type GameEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewGameEvent builds an envelope with a fresh ID and UTC timestamp.
func NewGameEvent(eventType, sessionID string, data map[string]any) GameEvent {
	return GameEvent{
		ID:        NewID(),
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// String extracts a string field from the event payload.
func (e GameEvent) String(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// Int extracts an integer field from the event payload, accepting the
// float64 form JSON decoding produces.
func (e GameEvent) Int(key string) int {
	switch v := e.Data[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// RuleChange is a world-rule modification proposed by an agent reacting to a
// broadcast event.
type RuleChange struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Scope       string  `json:"scope"` // "global", "puzzle", "combat"
	Magnitude   float64 `json:"magnitude"`
	Duration    int     `json:"duration_turns"`
}

// Stance values a surviving oracle may adopt after a defeat cascade.
const (
	StanceMoreHostile = "more_hostile"
	StanceCautious    = "cautious"
	StanceNeutral     = "neutral"
)

// StanceShift is a surviving oracle's structured reaction to another oracle's
// defeat.
type StanceShift struct {
	StanceChange       string `json:"stance_change"` // more_hostile | cautious | neutral
	StrategyAdjustment string `json:"strategy_adjustment"`
	MessageToPlayer    string `json:"message_to_player,omitempty"`
}

// Reaction pairs an oracle with whatever it produced in response to a routed
// event. Exactly one of the payload fields is set.
type Reaction struct {
	Oracle     string       `json:"oracle"`
	RuleChange *RuleChange  `json:"rule_change,omitempty"`
	Stance     *StanceShift `json:"stance,omitempty"`
}

// Effect is the typed result of an oracle special ability, expressed so the
// orchestrator can apply it mechanically rather than parsing prose.
type Effect struct {
	Name      string  `json:"name"`
	Magnitude float64 `json:"magnitude"`
	Duration  int     `json:"duration_turns"`
	Target    string  `json:"target"` // "player", "puzzle", "all_hostile_oracles", ...
	Message   string  `json:"message,omitempty"`
}
