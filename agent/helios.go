package agent

import (
	"context"
	"fmt"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// Helios, Oracle of the Sun. Burns away a third of the hints.
type Helios struct {
	*Core
}

// NewHelios builds the Helios variant.
func NewHelios(c *Core) *Helios { return &Helios{Core: c} }

// ModifyPuzzleRules decays a third of the hints and arms progressive burn.
func (a *Helios) ModifyPuzzleRules(ctx context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)

	burned := puzzle.DecayHints(st, 1.0/3.0)
	st.SetTwist("hint_decay", true)
	st.SetTwist("clue_burn_rate", 2)

	a.StoreMemory(ctx, core.MemoryPuzzleMod,
		"Burned away clues",
		fmt.Sprintf("Removed %d hints, burn continues over time", burned), 0.7, nil)
	return st, nil
}
