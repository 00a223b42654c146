package core

import "time"

// EncounterState is the mutable record of one (session, oracle) pair. It is
// created when the session is initialized (one per oracle, starting locked),
// mutated only through serialized phase transitions, and cascades with the
// session on deletion.
type EncounterState struct {
	Oracle           string         `json:"oracle"`
	Phase            Phase          `json:"current_phase"`
	Accessible       bool           `json:"is_accessible"`
	Defeated         bool           `json:"is_defeated"`
	Hostile          bool           `json:"is_hostile"`
	Allied           bool           `json:"is_allied"`
	Stance           float64        `json:"diplomatic_stance"` // clamped to [-1, 1]
	Interactions     int            `json:"interactions_count"`
	Puzzle           *PuzzleState   `json:"puzzle_state,omitempty"`
	Battle           *BattleState   `json:"battle_state,omitempty"`
	ActiveRules      map[string]any `json:"special_rules_active,omitempty"`
	DefeatedAt       *time.Time     `json:"defeated_at,omitempty"`
	LastInteraction  time.Time      `json:"last_interaction"`
	RewardsGranted   bool           `json:"rewards_granted"`
	ArmyBoostApplied float64        `json:"army_boost,omitempty"`
}

// NewEncounterState seeds the initial record for an oracle in a fresh
// session: locked, hostile, stance -0.5. Accessibility is decided by the
// caller (only the first oracle starts selectable).
func NewEncounterState(oracle string) *EncounterState {
	return &EncounterState{
		Oracle:      oracle,
		Phase:       PhaseLocked,
		Hostile:     true,
		Stance:      -0.5,
		ActiveRules: map[string]any{},
	}
}

// SetStance assigns the diplomatic stance, clamping into [-1, 1].
func (e *EncounterState) SetStance(v float64) {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	e.Stance = v
}

// ShiftStance adjusts the stance by delta with clamping.
func (e *EncounterState) ShiftStance(delta float64) { e.SetStance(e.Stance + delta) }

// Clone returns a deep copy safe for independent mutation.
func (e *EncounterState) Clone() *EncounterState {
	c := *e
	if e.Puzzle != nil {
		c.Puzzle = e.Puzzle.Clone()
	}
	if e.Battle != nil {
		c.Battle = e.Battle.Clone()
	}
	if e.ActiveRules != nil {
		c.ActiveRules = make(map[string]any, len(e.ActiveRules))
		for k, v := range e.ActiveRules {
			c.ActiveRules[k] = v
		}
	}
	if e.DefeatedAt != nil {
		t := *e.DefeatedAt
		c.DefeatedAt = &t
	}
	return &c
}
