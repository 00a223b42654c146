package agent

import (
	"context"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// Gaia, Oracle of the Living Earth. The puzzle terrain drifts on a fixed tick
// while being solved.
type Gaia struct {
	*Core
}

// NewGaia builds the Gaia variant.
func NewGaia(c *Core) *Gaia { return &Gaia{Core: c} }

// ModifyPuzzleRules arms terrain drift every 30 seconds.
func (a *Gaia) ModifyPuzzleRules(ctx context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)

	puzzle.TerrainDrift(st, 30, "medium")
	st.SetTwist("tectonic_shift", true)
	st.SetTwist("living_puzzle", true)

	a.StoreMemory(ctx, core.MemoryPuzzleMod,
		"Set the earth in motion", "Terrain drifts on a fixed tick", 0.7, nil)
	return st, nil
}
