package agent

import (
	"context"
	"strings"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
	"github.com/astraeum/oraclecore/puzzle"
)

// DelphiX, Oracle of Prophecy. Annotates puzzles with foresight and predicts
// the player's next move from their recent patterns.
type DelphiX struct {
	*Core
}

// NewDelphiX builds the DelphiX variant.
func NewDelphiX(c *Core) *DelphiX { return &DelphiX{Core: c} }

// ModifyPuzzleRules arms precognition mechanics.
func (a *DelphiX) ModifyPuzzleRules(_ context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)
	st.SetTwist("future_sight", true)
	st.SetTwist("oracle_knows_solution", true)
	return st, nil
}

// PredictPlayerMove asks the gateway for a one-word prediction of the
// player's next action based on their last ten moves. Failures predict
// "attack", the statistically safest guess.
func (a *DelphiX) PredictPlayerMove(ctx context.Context, recentActions []string) string {
	if len(recentActions) > 10 {
		recentActions = recentActions[len(recentActions)-10:]
	}
	raw, err := a.Gateway().Generate(ctx, gateway.Request{
		Prompt:      "Based on patterns: " + strings.Join(recentActions, ", ") + ", predict the player's next action. Return a single word.",
		Temperature: 0.3,
	})
	if err != nil {
		return ActionAttack
	}
	prediction := strings.ToLower(strings.TrimSpace(raw))
	if prediction == "" {
		return ActionAttack
	}
	return prediction
}
