package agent

import (
	"fmt"
	"strings"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/internal/util"
)

const personalityPromptTmpl = `You are {{.name}}, the Oracle of {{.domain}}.

Personality Traits:
- Cunning Level: {{.cunning}}/10
- Deception: {{.deception}}/10
- Honor: {{.honor}}/10
- Wisdom: {{.wisdom}}/10

Current Situation:
{{.situation}}

You must respond in character, considering your domain expertise and personality.
Your goal is to challenge the player while maintaining your oracle persona.

Response:`

func personalityPrompt(p core.OracleProfile, situation string) string {
	out, err := util.RenderTemplate(personalityPromptTmpl, map[string]any{
		"name":      p.Name,
		"domain":    p.Domain,
		"cunning":   p.Traits.Cunning,
		"deception": p.Traits.Deception,
		"honor":     p.Traits.Honor,
		"wisdom":    p.Traits.Wisdom,
		"situation": situation,
	})
	if err != nil {
		// Template text is a compile-time constant; failure here means a typo,
		// and a degraded prompt beats no prompt.
		return fmt.Sprintf("You are %s, the Oracle of %s.\n\n%s", p.Name, p.Domain, situation)
	}
	return out
}

func puzzlePrompt(p core.OracleProfile, puzzleType string, difficulty, defeated int) string {
	return fmt.Sprintf(`Generate a %s puzzle for %s's domain.

Difficulty Level: %d/13
Player Progress: %d oracles defeated

Requirements:
1. Puzzle must be solvable but challenging
2. Must fit the oracle's domain theme
3. Include clear description and solution
4. Provide 2-3 hints of increasing specificity

Return ONLY valid JSON with this structure:
{
    "puzzle_type": "%s",
    "description": "puzzle description",
    "solution": "correct answer",
    "hints": ["hint1", "hint2", "hint3"],
    "difficulty": %d
}`, puzzleType, p.Name, difficulty, defeated, puzzleType, difficulty)
}

func tacticalPrompt(name string, battle *core.BattleState) string {
	return fmt.Sprintf(`You are %s commanding your army in battle.

Battle State:
- Your Health: %.0f
- Player Health: %.0f
- Turn: %d

Available Actions: %s

Choose the best tactical action based on current situation.
Return ONLY the action name, nothing else.

Action:`, name, battle.EnemyHP, battle.PlayerHP, battle.Turn,
		strings.Join([]string{ActionAttack, ActionDefend, ActionSpecialAbility, ActionTacticalRetreat}, ", "))
}

func deceptionPrompt(original string) string {
	return fmt.Sprintf(`Rewrite this response to be subtly deceptive or misleading while maintaining plausibility:
"%s"

Make it sound helpful but lead the player astray. Keep the tone and voice consistent.`, original)
}
