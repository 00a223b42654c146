package agent

import (
	"context"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// Proteus, Oracle of Illusion. Rules shift mid-solve at fixed completion
// checkpoints.
type Proteus struct {
	*Core
}

// NewProteus builds the Proteus variant.
func NewProteus(c *Core) *Proteus { return &Proteus{Core: c} }

// ModifyPuzzleRules arms rule shifts at the 25/50/75% completion checkpoints.
func (a *Proteus) ModifyPuzzleRules(ctx context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)

	puzzle.SetRuleShiftCheckpoints(st, 25, 50, 75)
	st.SetTwist("proteus_twist", map[string]any{
		"rule_shifts":          3,
		"metamorphosis_active": true,
	})

	a.StoreMemory(ctx, core.MemoryPuzzleMod,
		"Applied metamorphosis", "Rules shift at checkpoints", 0.7, nil)
	return st, nil
}
