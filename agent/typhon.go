package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/puzzle"
)

// typhonMaxPhase bounds the final battle's escalation.
const typhonMaxPhase = 3

// Typhon, Oracle of Chaos, the final trial. Draws two chaotic rule rewrites
// from a fixed pool on every mutation, keeps a running record of everything
// already applied, and escalates through three battle phases.
type Typhon struct {
	*Core

	mu      sync.Mutex
	phase   int
	applied []string
}

// NewTyphon builds the Typhon variant starting at phase 1.
func NewTyphon(c *Core) *Typhon { return &Typhon{Core: c, phase: 1} }

var chaosPool = []string{
	"time_reversal",
	"shadow_lies",
	"reality_shift",
	"rule_inversion",
}

// ModifyPuzzleRules samples two chaos effects from the pool and records them
// against the running list. The mutation is a function of the skeleton plus
// Typhon's internal counters, as every mutation hook must be.
func (a *Typhon) ModifyPuzzleRules(ctx context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	st := puzzle.NewState(a.Name(), skeleton)

	a.mu.Lock()
	first := a.Rand().IntN(len(chaosPool))
	second := a.Rand().IntN(len(chaosPool) - 1)
	if second >= first {
		second++
	}
	selected := []string{chaosPool[first], chaosPool[second]}
	a.applied = append(a.applied, selected...)
	phase := a.phase
	appliedTotal := len(a.applied)
	a.mu.Unlock()

	for _, effect := range selected {
		st.SetTwist(effect, true)
	}
	st.SetTwist("chaos_level", 10)
	st.SetTwist("combines_all_oracles", true)
	st.SetTwist("current_phase", phase)

	a.StoreMemory(ctx, core.MemoryRuleChange,
		fmt.Sprintf("Applied chaos: %v", selected),
		fmt.Sprintf("Entropy increases, %d rewrites so far", appliedTotal), 1.0, nil)
	return st, nil
}

// AdvancePhase moves the final battle to its next phase, capped at 3.
func (a *Typhon) AdvancePhase() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase < typhonMaxPhase {
		a.phase++
	}
	return a.phase
}

// Phase reports the current battle phase (1..3).
func (a *Typhon) Phase() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// AppliedChanges returns a copy of every chaos rewrite applied so far.
func (a *Typhon) AppliedChanges() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.applied...)
}

// SpecialAbility rewrites reality itself for two turns.
func (a *Typhon) SpecialAbility(ctx context.Context, _ *core.GameSession) (*core.Effect, error) {
	a.StoreMemory(ctx, core.MemorySpecialAbility,
		"Invoked Reality Rewrite", "The rules of the trial no longer hold", 1.0, nil)
	return &core.Effect{
		Name:      "reality_rewrite",
		Magnitude: 2,
		Duration:  2,
		Target:    "all",
		Message:   "Typhon tears the rules asunder. Nothing is as it was.",
	}, nil
}
