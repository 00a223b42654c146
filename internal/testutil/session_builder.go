package testutil

import (
	"time"

	"github.com/astraeum/oraclecore/core"
)

// SessionBuilder helps construct game sessions with fluent chaining for
// tests. Example:
//
//	s := NewSessionBuilder("run-1").Gold(500).Defeated(3).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type SessionBuilder struct {
	session core.GameSession
}

// NewSessionBuilder creates a builder seeded with a playable session: stage
// follows the defeat count, one deployed unit group, default resources.
func NewSessionBuilder(id string) *SessionBuilder {
	now := time.Now().UTC()
	return &SessionBuilder{session: core.GameSession{
		ID:              id,
		Stage:           1,
		Gold:            100,
		InsightTokens:   1,
		HealingDraughts: 1,
		Weapons:         []string{"Mortal Spear"},
		Army: []core.UnitGroup{
			{Name: "Novice Soldiers", Quantity: 10, Attack: 10, Defense: 10, Health: 100, Morale: 1.0, Deployed: true},
		},
		Created:  now,
		LastSave: now,
	}}
}

// Gold sets the gold balance (chainable).
func (b *SessionBuilder) Gold(g int) *SessionBuilder { b.session.Gold = g; return b }

// InsightTokens sets the insight token balance (chainable).
func (b *SessionBuilder) InsightTokens(n int) *SessionBuilder { b.session.InsightTokens = n; return b }

// Defeated sets the defeat count and bumps the stage to match (chainable).
func (b *SessionBuilder) Defeated(n int) *SessionBuilder {
	b.session.OraclesDefeated = n
	b.session.Stage = n + 1
	if b.session.Stage > core.TotalOracles {
		b.session.Stage = core.TotalOracles
	}
	return b
}

// Army replaces the army composition (chainable).
func (b *SessionBuilder) Army(units ...core.UnitGroup) *SessionBuilder {
	b.session.Army = units
	return b
}

// CurrentOracle marks the oracle the player is engaging (chainable).
func (b *SessionBuilder) CurrentOracle(name string) *SessionBuilder {
	b.session.CurrentOracle = name
	return b
}

// Build returns the assembled session.
func (b *SessionBuilder) Build() *core.GameSession {
	s := b.session
	return s.Clone()
}
