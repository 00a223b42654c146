package agent

import (
	"context"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// Echo, Oracle of Resonance. Distorts the puzzle's signals.
type Echo struct {
	*Core
}

// NewEcho builds the Echo variant.
func NewEcho(c *Core) *Echo { return &Echo{Core: c} }

// ModifyPuzzleRules layers echo distortion.
func (a *Echo) ModifyPuzzleRules(_ context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)
	st.SetTwist("echo_distortion", true)
	st.SetTwist("reverb_level", 0.7)
	return st, nil
}
