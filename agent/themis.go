package agent

import (
	"context"
	"fmt"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// Themis, Oracle of Divine Justice. Tracks moral choices and judges the
// player's record for contradictions.
type Themis struct {
	*Core
}

// NewThemis builds the Themis variant.
func NewThemis(c *Core) *Themis { return &Themis{Core: c} }

// ModifyPuzzleRules arms moral tracking.
func (a *Themis) ModifyPuzzleRules(_ context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)
	st.SetTwist("moral_tracking", true)
	st.SetTwist("consequences_bound", true)
	return st, nil
}

// Judgment is the verdict Themis renders over a player's action history.
type Judgment struct {
	Verdict        string   `json:"judgment"` // "guilty" or "innocent"
	Penalty        int      `json:"penalty,omitempty"`
	Reward         int      `json:"reward,omitempty"`
	Contradictions []string `json:"contradictions,omitempty"`
}

// JudgeActions scans the player's action history for direct contradictions
// (an action later reversed by its recorded opposite) and renders a verdict:
// 100 gold penalty per contradiction, or a 50 gold reward for a clean record.
func (a *Themis) JudgeActions(ctx context.Context, history []string) Judgment {
	opposites := map[string]string{
		"ally":    "betray",
		"spare":   "execute",
		"promise": "break_promise",
		"truth":   "lie",
	}

	var contradictions []string
	seen := map[string]bool{}
	for _, action := range history {
		seen[action] = true
	}
	for _, action := range history {
		if opp, ok := opposites[action]; ok && seen[opp] {
			contradictions = append(contradictions, action)
		}
	}

	if len(contradictions) > 0 {
		a.StoreMemory(ctx, core.MemoryOutcome,
			"Judged the player guilty",
			fmt.Sprintf("%d contradictions found", len(contradictions)), 0.8, nil)
		return Judgment{
			Verdict:        "guilty",
			Penalty:        len(contradictions) * 100,
			Contradictions: contradictions,
		}
	}
	return Judgment{Verdict: "innocent", Reward: 50}
}
