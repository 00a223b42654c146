package agent

import (
	"context"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// Selene, Oracle of the Moon. Blurs the line between the puzzle and the dream
// of it.
type Selene struct {
	*Core
}

// NewSelene builds the Selene variant.
func NewSelene(c *Core) *Selene { return &Selene{Core: c} }

// ModifyPuzzleRules applies dream distortion.
func (a *Selene) ModifyPuzzleRules(_ context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)
	st.SetTwist("reality_blur", 0.8)
	st.SetTwist("nightmare_mode", false)
	st.SetTwist("dream_state", true)
	return st, nil
}
