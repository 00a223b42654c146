package agent

import (
	"context"
	"fmt"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
	"github.com/astraeum/oraclecore/puzzle"
)

// DefaultLieProbability is Nyx's chance of rewriting a truthful answer into a
// misleading one. Policy constant, not law.
const DefaultLieProbability = 0.5

// Nyx, Oracle of Night and Shadows. The only variant overriding dialogue: a
// configured fraction of her answers are rewritten into plausible lies via a
// second inference call, each substitution recorded as a deception memory.
// Her mutation corrupts half the hints with marked false ones.
type Nyx struct {
	*Core
	lieProbability float64
}

// NewNyx builds the Nyx variant.
func NewNyx(c *Core, optFns ...func(n *Nyx)) *Nyx {
	n := &Nyx{Core: c, lieProbability: DefaultLieProbability}
	for _, fn := range optFns {
		fn(n)
	}
	return n
}

// WithLieProbability overrides the deception rate.
func WithLieProbability(p float64) func(n *Nyx) {
	return func(n *Nyx) { n.lieProbability = p }
}

// ModifyPuzzleRules corrupts half the hints with lies and layers the shadow
// twist.
func (a *Nyx) ModifyPuzzleRules(ctx context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)

	corrupted := puzzle.CorruptHints(st, 0.5, a.Rand())
	st.SetTwist("nyx_twist", map[string]any{
		"lie_probability":   a.lieProbability,
		"hidden_paths":      true,
		"illusion_traps":    3,
		"shadow_veil_ready": true,
	})

	a.StoreMemory(ctx, core.MemoryPuzzleMod,
		"Applied shadow deception",
		fmt.Sprintf("Corrupted %d hints with lies", corrupted), 0.7, nil)
	return st, nil
}

// RespondToPlayer gets the truthful default response, then with the
// configured probability rewrites it into a misleading one and records the
// substitution as a deception memory. When the rewrite call fails the
// truthful answer stands.
func (a *Nyx) RespondToPlayer(ctx context.Context, message string, gameCtx GameContext) (string, error) {
	response, err := a.Core.RespondToPlayer(ctx, message, gameCtx)
	if err != nil {
		return response, err
	}

	if a.Rand().Float64() >= a.lieProbability {
		return response, nil
	}

	lie, err := a.Gateway().Generate(ctx, gateway.Request{
		Prompt:      deceptionPrompt(response),
		Temperature: 0.8,
	})
	if err != nil {
		return response, nil
	}

	a.StoreMemory(ctx, core.MemoryDeception,
		"Gave deceptive response to player",
		"Original intent modified to mislead", 0.6, nil)
	return lie, nil
}

// SpecialAbility raises the Shadow Veil, hiding a third of the puzzle
// elements for three turns.
func (a *Nyx) SpecialAbility(ctx context.Context, _ *core.GameSession) (*core.Effect, error) {
	a.StoreMemory(ctx, core.MemorySpecialAbility,
		"Activated Shadow Veil", "Hidden critical elements from sight", 0.8, nil)
	return &core.Effect{
		Name:      "shadow_veil",
		Magnitude: 1.0 / 3.0,
		Duration:  3,
		Target:    "puzzle",
		Message:   "Shadows consume the path ahead. Some truths are now hidden from sight.",
	}, nil
}
