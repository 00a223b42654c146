// Package agent implements the behavior registry: thirteen named oracle
// variants sharing one capability interface. A shared Core struct carries the
// default behavior (inference-backed puzzle generation with static fallback,
// memory-grounded dialogue, tactical decisions coerced to a safe default);
// variants compose over it and override only their signature mechanics.
package agent

import (
	"context"

	"github.com/astraeum/oraclecore/core"
)

// Combat actions an oracle may choose during a battle turn.
const (
	ActionAttack          = "attack"
	ActionDefend          = "defend"
	ActionSpecialAbility  = "special_ability"
	ActionTacticalRetreat = "tactical_retreat"
)

// GameContext is the situational snapshot handed to dialogue and special
// ability invocations.
type GameContext struct {
	Stage            int
	OraclesDefeated  int
	CurrentChallenge string
}

// Behavior is the shared capability set of every oracle variant.
//
// GeneratePuzzle must always return a syntactically valid skeleton, falling
// back to the static per-oracle template when inference fails.
// ModifyPuzzleRules layers the oracle's signature twist and must never drop
// skeleton fields. MakeTacticalDecision never fails a turn; malformed or
// out-of-set answers coerce to attack. SpecialAbility returns nil for
// variants without one.
type Behavior interface {
	Name() string
	Profile() core.OracleProfile

	GeneratePuzzle(ctx context.Context, difficulty int, playerContext map[string]any) (core.PuzzleSkeleton, error)
	ModifyPuzzleRules(ctx context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error)
	RespondToPlayer(ctx context.Context, message string, gameCtx GameContext) (string, error)
	MakeTacticalDecision(ctx context.Context, battle *core.BattleState) string
	SpecialAbility(ctx context.Context, session *core.GameSession) (*core.Effect, error)
	LearnFromOutcome(ctx context.Context, outcome string, contextText string)
}
