// Package combat implements the deterministic combat resolver: pure power
// aggregation over unit groups, battle initiation from per-oracle army
// templates, and turn-by-turn resolution with bounded damage draws behind an
// injectable randomness source.
package combat

import (
	"fmt"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/logging"
)

// Default damage draw bounds. Policy constants, configurable per resolver.
const (
	DefaultPlayerDamageMin = 50
	DefaultPlayerDamageMax = 150
	DefaultEnemyDamageMin  = 40
	DefaultEnemyDamageMax  = 120

	// DefaultEnemyScaling multiplies oracle difficulty into the enemy power
	// multiplier.
	DefaultEnemyScaling = 0.8
)

// Options configure a Resolver.
type Options struct {
	Rand   core.Rand
	Logger logging.Logger

	PlayerDamageMin int
	PlayerDamageMax int
	EnemyDamageMin  int
	EnemyDamageMax  int
	EnemyScaling    float64
}

// Resolver runs battles. Construct with NewResolver.
type Resolver struct {
	opts Options
}

// NewResolver creates a resolver with default damage policy.
func NewResolver(r core.Rand, optFns ...func(o *Options)) *Resolver {
	opts := Options{
		Rand:            r,
		Logger:          logging.NoOpLogger{},
		PlayerDamageMin: DefaultPlayerDamageMin,
		PlayerDamageMax: DefaultPlayerDamageMax,
		EnemyDamageMin:  DefaultEnemyDamageMin,
		EnemyDamageMax:  DefaultEnemyDamageMax,
		EnemyScaling:    DefaultEnemyScaling,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Resolver{opts: opts}
}

// CalculateCombatPower aggregates unit stats: attack and defense weighted by
// quantity and morale, health by quantity, composite score
// (attack + defense) * (health / 100). Pure and order-independent.
func CalculateCombatPower(units []core.UnitGroup) core.CombatPower {
	var p core.CombatPower
	for _, u := range units {
		q := float64(u.Quantity)
		morale := u.Morale
		if morale == 0 {
			morale = 1.0
		}
		p.Attack += float64(u.Attack) * q * morale
		p.Defense += float64(u.Defense) * q * morale
		p.Health += float64(u.Health) * q
	}
	p.Score = (p.Attack + p.Defense) * (p.Health / 100)
	return p
}

// InitiateBattle seeds a fresh battle at turn 1 from the player's deployed
// units against a themed enemy army scaled by the oracle's difficulty.
func (r *Resolver) InitiateBattle(session *core.GameSession, oracle core.OracleProfile) *core.BattleState {
	playerUnits := session.DeployedUnits()
	playerPower := CalculateCombatPower(playerUnits)

	enemyUnits := GenerateEnemyArmy(oracle.Name, float64(oracle.Difficulty)*r.opts.EnemyScaling)
	enemyPower := CalculateCombatPower(enemyUnits)

	r.opts.Logger.Info("battle initiated",
		"oracle", oracle.Name,
		"player_power", playerPower.Score,
		"enemy_power", enemyPower.Score)

	return &core.BattleState{
		Turn:        1,
		PlayerUnits: playerUnits,
		EnemyUnits:  enemyUnits,
		PlayerHP:    playerPower.Health,
		EnemyHP:     enemyPower.Health,
		Status:      core.BattleInProgress,
	}
}

// ExecuteCombatTurn resolves one turn in place. The player's damage draw
// applies first; the counterattack lands only while the enemy still stands,
// so a simultaneous knockout favors the player. The turn counter increments
// unconditionally.
func (r *Resolver) ExecuteCombatTurn(b *core.BattleState) error {
	if b == nil || b.Status != core.BattleInProgress {
		return fmt.Errorf("%w", core.ErrBattleNotInProgress)
	}

	playerDamage := r.draw(r.opts.PlayerDamageMin, r.opts.PlayerDamageMax)
	b.EnemyHP -= float64(playerDamage)
	b.AppendLog(fmt.Sprintf("Turn %d: Player dealt %d damage", b.Turn, playerDamage))

	if b.EnemyHP > 0 {
		enemyDamage := r.draw(r.opts.EnemyDamageMin, r.opts.EnemyDamageMax)
		b.PlayerHP -= float64(enemyDamage)
		b.AppendLog(fmt.Sprintf("Turn %d: Enemy dealt %d damage", b.Turn, enemyDamage))
	}

	if b.EnemyHP <= 0 {
		b.Status = core.BattleVictory
		b.AppendLog("Victory! Enemy defeated!")
	} else if b.PlayerHP <= 0 {
		b.Status = core.BattleDefeat
		b.AppendLog("Defeat! Your army has fallen!")
	}

	b.Turn++
	return nil
}

// draw returns a uniform integer in [min, max].
func (r *Resolver) draw(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.opts.Rand.IntN(max-min+1)
}
