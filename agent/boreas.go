package agent

import (
	"context"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// Boreas, Oracle of the North Wind. Freezes progress and stretches time.
type Boreas struct {
	*Core
}

// NewBoreas builds the Boreas variant.
func NewBoreas(c *Core) *Boreas { return &Boreas{Core: c} }

// ModifyPuzzleRules freezes progress and scales the time limit up by half,
// with a 60 second floor, to model slowed movement through the ice.
func (a *Boreas) ModifyPuzzleRules(ctx context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)

	puzzle.ScaleTimeLimit(st, 1.5, 60)
	st.SetTwist("frozen_progress", true)
	st.SetTwist("ice_hazards", map[string]any{
		"damage": 10,
		"slow":   0.5,
	})

	a.StoreMemory(ctx, core.MemoryPuzzleMod,
		"Froze the trial", "Progress freezes, movement slowed", 0.7, nil)
	return st, nil
}
