package core

// UnitGroup is one homogeneous block of units in an army composition.
type UnitGroup struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Attack   int     `json:"attack"`
	Defense  int     `json:"defense"`
	Health   int     `json:"health"`
	Morale   float64 `json:"morale"`
	Deployed bool    `json:"is_deployed,omitempty"`
}

// CombatPower is the deterministic aggregation of an army's unit stats.
type CombatPower struct {
	Attack  float64 `json:"attack"`
	Defense float64 `json:"defense"`
	Health  float64 `json:"health"`
	Score   float64 `json:"power_score"`
}

// BattleStatus is the outcome state of a battle.
type BattleStatus string

const (
	BattleInProgress BattleStatus = "in_progress"
	BattleVictory    BattleStatus = "victory"
	BattleDefeat     BattleStatus = "defeat"
)

// DisplayLogSize bounds the battle log tail kept for display. The full log is
// preserved separately for audit.
const DisplayLogSize = 5

// BattleState tracks one battle from initiation at turn 1 until victory or
// defeat. Created at battle phase entry, discarded at phase exit.
type BattleState struct {
	Turn        int          `json:"turn"`
	PlayerUnits []UnitGroup  `json:"player_units"`
	EnemyUnits  []UnitGroup  `json:"enemy_units"`
	PlayerHP    float64      `json:"player_health"`
	EnemyHP     float64      `json:"enemy_health"`
	Status      BattleStatus `json:"status"`
	Log         []string     `json:"battle_log"`
}

// AppendLog records a battle event in the full audit log.
func (b *BattleState) AppendLog(entry string) { b.Log = append(b.Log, entry) }

// DisplayLog returns the bounded tail of the battle log for display.
func (b *BattleState) DisplayLog() []string {
	if len(b.Log) <= DisplayLogSize {
		return append([]string(nil), b.Log...)
	}
	return append([]string(nil), b.Log[len(b.Log)-DisplayLogSize:]...)
}

// Clone returns a deep copy safe for independent mutation.
func (b *BattleState) Clone() *BattleState {
	c := *b
	c.PlayerUnits = append([]UnitGroup(nil), b.PlayerUnits...)
	c.EnemyUnits = append([]UnitGroup(nil), b.EnemyUnits...)
	c.Log = append([]string(nil), b.Log...)
	return &c
}
