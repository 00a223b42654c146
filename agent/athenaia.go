package agent

import (
	"context"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// Athenaia, Oracle of Wisdom. Layers constraints and multi-step requirements
// onto the puzzle.
type Athenaia struct {
	*Core
}

// NewAthenaia builds the Athenaia variant.
func NewAthenaia(c *Core) *Athenaia { return &Athenaia{Core: c} }

// ModifyPuzzleRules increases strategic complexity.
func (a *Athenaia) ModifyPuzzleRules(ctx context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)
	st.SetTwist("athenaia_twist", map[string]any{
		"additional_constraints":  2,
		"multi_step_solution":     true,
		"counter_strategy_active": true,
		"complexity_multiplier":   1.5,
	})

	a.StoreMemory(ctx, core.MemoryPuzzleMod,
		"Increased strategic complexity",
		"Added constraints and multi-step requirements", 0.7, nil)
	return st, nil
}
