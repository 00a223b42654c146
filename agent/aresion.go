package agent

import (
	"context"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// Aresion, Oracle of War. Battle frenzy multipliers on puzzles, and an army
// boost cascading to all remaining hostile oracles after a defeat.
type Aresion struct {
	*Core
}

// NewAresion builds the Aresion variant.
func NewAresion(c *Core) *Aresion { return &Aresion{Core: c} }

// ModifyPuzzleRules layers the battle frenzy twist.
func (a *Aresion) ModifyPuzzleRules(_ context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)
	st.SetTwist("enemy_reinforcements", true)
	st.SetTwist("battle_frenzy", map[string]any{
		"attack_multiplier": 1.5,
		"defense_penalty":   0.8,
	})
	return st, nil
}

// SpecialAbility boosts every remaining hostile oracle's army by 20%.
func (a *Aresion) SpecialAbility(ctx context.Context, _ *core.GameSession) (*core.Effect, error) {
	a.StoreMemory(ctx, core.MemorySpecialAbility,
		"Invoked the war cry", "All hostile oracle armies strengthened", 0.8, nil)
	return &core.Effect{
		Name:      "army_boost",
		Magnitude: 1.2,
		Target:    "all_hostile_oracles",
		Message:   "Aresion's war cry echoes across every dominion. The remaining oracles muster.",
	}, nil
}
