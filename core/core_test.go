package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		from, to Phase
		ok       bool
	}{
		{PhaseLocked, PhaseExploration, true},
		{PhaseLocked, PhasePuzzle, false},
		{PhaseExploration, PhasePuzzle, true},
		{PhasePuzzle, PhasePuzzle, true}, // retry
		{PhasePuzzle, PhaseBattle, true},
		{PhasePuzzle, PhaseConfrontation, false},
		{PhaseBattle, PhaseBattle, true}, // turn loop
		{PhaseBattle, PhaseConfrontation, true},
		{PhaseConfrontation, PhaseDefeated, true},
		{PhaseDefeated, PhaseExploration, false},
		{PhaseDefeated, PhaseDefeated, false},
	}
	for _, tt := range tests {
		got := tt.from.CanTransition(tt.to)
		assert.Equal(t, tt.ok, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestPhaseTransitionError(t *testing.T) {
	_, err := PhaseLocked.Transition(PhaseBattle)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotAccessible))

	next, err := PhaseConfrontation.Transition(PhaseDefeated)
	require.NoError(t, err)
	assert.Equal(t, PhaseDefeated, next)
	assert.True(t, next.Terminal())
}

func TestDefaultProfiles(t *testing.T) {
	profiles := DefaultProfiles()
	require.Len(t, profiles, TotalOracles)

	seen := map[string]bool{}
	orders := map[int]bool{}
	for _, p := range profiles {
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Domain)
		assert.False(t, seen[p.Name], "duplicate oracle %s", p.Name)
		assert.False(t, orders[p.UnlockOrder], "duplicate unlock order %d", p.UnlockOrder)
		seen[p.Name] = true
		orders[p.UnlockOrder] = true
		assert.GreaterOrEqual(t, p.Traits.Cunning, 0)
		assert.LessOrEqual(t, p.Traits.Cunning, 10)
	}
	assert.Equal(t, "Chronos", FirstOracle())
}

func TestProfileByName(t *testing.T) {
	p, ok := ProfileByName("Typhon")
	require.True(t, ok)
	assert.Equal(t, 13, p.Difficulty)
	assert.Equal(t, 10, p.Traits.Chaos)

	_, ok = ProfileByName("Zeus")
	assert.False(t, ok)
}

func TestStanceClamping(t *testing.T) {
	enc := NewEncounterState("Nyx")
	assert.Equal(t, -0.5, enc.Stance)

	enc.ShiftStance(-3)
	assert.Equal(t, -1.0, enc.Stance)

	enc.SetStance(2.5)
	assert.Equal(t, 1.0, enc.Stance)
}

func TestEncounterClone(t *testing.T) {
	enc := NewEncounterState("Gaia")
	enc.Puzzle = &PuzzleState{PuzzleSkeleton: PuzzleSkeleton{Type: "living_maze"}, Twists: map[string]any{"growth": 1}}
	enc.ActiveRules["tectonic_shift"] = true

	clone := enc.Clone()
	clone.Puzzle.SetTwist("growth", 2)
	clone.ActiveRules["tectonic_shift"] = false

	assert.Equal(t, 1, enc.Puzzle.Twists["growth"])
	assert.Equal(t, true, enc.ActiveRules["tectonic_shift"])
}

func TestBattleDisplayLogTail(t *testing.T) {
	b := &BattleState{Status: BattleInProgress}
	for _, e := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		b.AppendLog(e)
	}
	assert.Len(t, b.Log, 7, "full log preserved for audit")
	assert.Equal(t, []string{"c", "d", "e", "f", "g"}, b.DisplayLog())
}

func TestScriptedRandCycles(t *testing.T) {
	r := &ScriptedRand{Floats: []float64{0.1, 0.9}, Ints: []int{3}}
	assert.Equal(t, 0.1, r.Float64())
	assert.Equal(t, 0.9, r.Float64())
	assert.Equal(t, 0.1, r.Float64())
	assert.Equal(t, 3, r.IntN(10))
	assert.Equal(t, 1, r.IntN(2))
}

func TestGameEventAccessors(t *testing.T) {
	ev := NewGameEvent(EventOracleChallenge, "s1", map[string]any{
		"oracle":     "Chronos",
		"difficulty": float64(5), // JSON-decoded number
	})
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "Chronos", ev.String("oracle"))
	assert.Equal(t, 5, ev.Int("difficulty"))
	assert.Equal(t, 0, ev.Int("missing"))
}
