package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/astraeum/oraclecore/core"
)

func ruleChangePrompt(oracle string, world core.WorldState, triggeredEvent string) string {
	state, err := json.MarshalIndent(world, "", "  ")
	if err != nil {
		state = []byte("{}")
	}
	return fmt.Sprintf(`You are %s. A player action has triggered: %s

Current World State:
%s

You may propose ONE rule modification to make the game more challenging or unpredictable.

Return ONLY valid JSON:
{
    "name": "short_rule_name",
    "description": "what changes",
    "scope": "global|puzzle|combat",
    "magnitude": 1.0,
    "duration_turns": 3
}`, oracle, triggeredEvent, state)
}

func stanceShiftPrompt(oracle, defeated string) string {
	return fmt.Sprintf(`Oracle %s learns that %s has been defeated by the player.

How does %s react? Consider:
- Your relationship with %s
- Your own survival
- Strategic advantage

Return JSON:
{
    "stance_change": "more_hostile|cautious|neutral",
    "strategy_adjustment": "description",
    "message_to_player": "optional taunt or warning"
}`, oracle, defeated, oracle, defeated)
}

func insightHintPrompt(question string, stage int, currentChallenge string) string {
	if currentChallenge == "" {
		currentChallenge = "Unknown"
	}
	return fmt.Sprintf(`A player seeks guidance with this question: "%s"

Current Challenge: %s
Game Context: Oracle stage %d/%d

Provide a helpful but not overly revealing hint. Guide them toward the solution without giving it away directly.
Keep response under 80 words.

Hint:`, question, currentChallenge, stage, core.TotalOracles)
}
