package agent

import (
	"context"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// Chronos, Oracle of Time and Fate. Temporal sequence puzzles under a
// shrinking clock; his mutation halves the time limit and arms rewind
// mechanics, and his special ability cancels the player's last reward.
type Chronos struct {
	*Core
}

// NewChronos builds the Chronos variant.
func NewChronos(c *Core) *Chronos { return &Chronos{Core: c} }

// ModifyPuzzleRules seeds a difficulty-scaled time limit, halves it, and adds
// the temporal twist. The limit never drops below 60 seconds.
func (a *Chronos) ModifyPuzzleRules(ctx context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)

	limit := 300 - skeleton.Difficulty*20
	if limit < 60 {
		limit = 60
	}
	st.TimeLimit = limit
	puzzle.ScaleTimeLimit(st, 0.5, 60)

	st.SetTwist("chronos_twist", map[string]any{
		"rewind_on_wrong_answer": true,
		"repeating_sequence":     true,
		"causality_check":        true,
	})
	st.SetTwist("rewind_allowed", skeleton.Difficulty < 7)

	a.StoreMemory(ctx, core.MemoryPuzzleMod,
		"Applied temporal restrictions",
		"Time limit halved, rewind mechanics active", 0.7, nil)
	return st, nil
}

// SpecialAbility rewinds the player's last action, cancelling their most
// recent reward.
func (a *Chronos) SpecialAbility(ctx context.Context, _ *core.GameSession) (*core.Effect, error) {
	a.StoreMemory(ctx, core.MemorySpecialAbility,
		"Used Temporal Rewind", "Cancelled player progress", 0.8, nil)
	return &core.Effect{
		Name:    "temporal_rewind",
		Target:  "player",
		Message: "Chronos manipulates time! Your last action is undone.",
	}, nil
}
