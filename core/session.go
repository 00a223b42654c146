package core

import "time"

// TotalOracles is the number of oracles a player must defeat to complete a
// run.
const TotalOracles = 13

// WorldState is the session-scoped bag of global rule modifiers, alliances
// and hostilities that broadcast reactions mutate over the course of a run.
type WorldState struct {
	GlobalModifiers []string `json:"global_modifiers"`
	Alliances       []string `json:"alliances"`
	Hostilities     []string `json:"hostilities"`
	RuleChanges     []string `json:"rule_changes"`
}

// GameSession is one player's run through the thirteen dominions. It is
// mutated only through orchestrator-mediated operations and destroyed only on
// explicit deletion.
type GameSession struct {
	ID              string      `json:"id"`
	Stage           int         `json:"current_stage"` // 1..13
	OraclesDefeated int         `json:"oracles_defeated"`
	Gold            int         `json:"gold"`
	InsightTokens   int         `json:"insight_tokens"`
	HealingDraughts int         `json:"healing_draughts"`
	Weapons         []string    `json:"weapons"`
	SpecialItems    []string    `json:"special_items"`
	Potions         []string    `json:"potions"`
	Army            []UnitGroup `json:"army"`
	World           WorldState  `json:"world_state"`
	CurrentOracle   string      `json:"current_oracle,omitempty"`
	Completed       bool        `json:"is_completed"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	Created         time.Time   `json:"created"`
	LastSave        time.Time   `json:"last_save"`
}

// Clone returns a deep copy safe for independent mutation.
func (s *GameSession) Clone() *GameSession {
	c := *s
	c.Weapons = append([]string(nil), s.Weapons...)
	c.SpecialItems = append([]string(nil), s.SpecialItems...)
	c.Potions = append([]string(nil), s.Potions...)
	c.Army = append([]UnitGroup(nil), s.Army...)
	c.World.GlobalModifiers = append([]string(nil), s.World.GlobalModifiers...)
	c.World.Alliances = append([]string(nil), s.World.Alliances...)
	c.World.Hostilities = append([]string(nil), s.World.Hostilities...)
	c.World.RuleChanges = append([]string(nil), s.World.RuleChanges...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// DeployedUnits returns the unit groups currently committed to battle.
func (s *GameSession) DeployedUnits() []UnitGroup {
	units := make([]UnitGroup, 0, len(s.Army))
	for _, u := range s.Army {
		if u.Deployed {
			units = append(units, u)
		}
	}
	return units
}

// SessionStore persists GameSession and EncounterState aggregates. All engine
// operations are expressed as read-compute-write against this contract and
// are agnostic to the storage technology behind it.
type SessionStore interface {
	CreateSession(id string) (*GameSession, error)
	GetSession(id string) (*GameSession, error)
	SaveSession(session *GameSession) error
	DeleteSession(id string) error

	GetEncounter(sessionID, oracle string) (*EncounterState, error)
	SaveEncounter(sessionID string, enc *EncounterState) error
	ListEncounters(sessionID string) ([]*EncounterState, error)
}
