package encounter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astraeum/oraclecore/agent"
	"github.com/astraeum/oraclecore/combat"
	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
	"github.com/astraeum/oraclecore/memory"
	"github.com/astraeum/oraclecore/session"
)

func newManager(t *testing.T, responses ...string) (*Manager, core.SessionStore) {
	t.Helper()
	store := session.NewInMemoryStore()
	_, err := store.CreateSession("run-1")
	require.NoError(t, err)

	reg := agent.NewRegistry(gateway.NewMockGateway(responses...), memory.NewInMemoryStore())
	m := NewManager(store, reg, func(o *Options) {
		o.Resolver = combat.NewResolver(&core.ScriptedRand{Ints: []int{0}})
	})
	return m, store
}

func TestSelectOracleUnlocksExploration(t *testing.T) {
	m, store := newManager(t)

	enc, err := m.SelectOracle("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.PhaseExploration, enc.Phase)
	assert.Equal(t, 1, enc.Interactions)
	assert.False(t, enc.LastInteraction.IsZero())

	s, err := store.GetSession("run-1")
	require.NoError(t, err)
	assert.Equal(t, "Chronos", s.CurrentOracle)
}

func TestSelectOracleGuards(t *testing.T) {
	m, store := newManager(t)

	_, err := m.SelectOracle("run-1", "Nyx")
	assert.ErrorIs(t, err, core.ErrNotAccessible, "second oracle starts locked")

	enc, err := store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	enc.Defeated = true
	require.NoError(t, store.SaveEncounter("run-1", enc))

	_, err = m.SelectOracle("run-1", "Chronos")
	assert.ErrorIs(t, err, core.ErrAlreadyDefeated)
}

func TestSelectOracleIsIdempotentInExploration(t *testing.T) {
	m, _ := newManager(t)

	_, err := m.SelectOracle("run-1", "Chronos")
	require.NoError(t, err)
	enc, err := m.SelectOracle("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.PhaseExploration, enc.Phase)
}

func TestRequestPuzzleEntersPuzzlePhase(t *testing.T) {
	m, store := newManager(t,
		`{"puzzle_type":"temporal_sequence","description":"order the epochs","solution":"dawn noon dusk","hints":["start at sunrise"]}`)

	_, err := m.SelectOracle("run-1", "Chronos")
	require.NoError(t, err)

	st, err := m.RequestPuzzle(context.Background(), "run-1", "Chronos", nil)
	require.NoError(t, err)
	assert.Equal(t, "temporal_sequence", st.Type)
	assert.Equal(t, "Chronos", st.Oracle)

	enc, err := store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.PhasePuzzle, enc.Phase)
	require.NotNil(t, enc.Puzzle)
}

func TestRequestPuzzleRequiresExploration(t *testing.T) {
	m, _ := newManager(t)

	_, err := m.RequestPuzzle(context.Background(), "run-1", "Chronos", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotAccessible)
}

func TestSubmitAnswerTransitionsToBattle(t *testing.T) {
	m, store := newManager(t,
		`{"puzzle_type":"temporal_sequence","description":"order the epochs","solution":"dawn noon dusk","hints":[]}`)

	_, err := m.SelectOracle("run-1", "Chronos")
	require.NoError(t, err)
	_, err = m.RequestPuzzle(context.Background(), "run-1", "Chronos", nil)
	require.NoError(t, err)

	res, err := m.SubmitAnswer("run-1", "Chronos", "wrong guess")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 1, res.Attempts)

	res, err = m.SubmitAnswer("run-1", "Chronos", "  DAWN   noon DUSK ")
	require.NoError(t, err)
	assert.True(t, res.Correct)

	enc, err := store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.PhaseBattle, enc.Phase)
}

func seedBattlePhase(t *testing.T, store core.SessionStore, oracle string, b *core.BattleState) {
	t.Helper()
	enc, err := store.GetEncounter("run-1", oracle)
	require.NoError(t, err)
	enc.Phase = core.PhaseBattle
	enc.Accessible = true
	enc.Battle = b
	require.NoError(t, store.SaveEncounter("run-1", enc))
}

func TestStartBattleSeedsFromDeployedUnits(t *testing.T) {
	m, store := newManager(t)
	seedBattlePhase(t, store, "Chronos", nil)

	b, err := m.StartBattle("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Turn)
	assert.Equal(t, core.BattleInProgress, b.Status)
	assert.InDelta(t, 1000, b.PlayerHP, 1e-9, "ten deployed novice soldiers")
	assert.Positive(t, b.EnemyHP)

	// A second start while in progress returns the existing battle.
	again, err := m.StartBattle("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, b.EnemyHP, again.EnemyHP)
}

func TestStartBattleOutsideBattlePhase(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.StartBattle("run-1", "Chronos")
	assert.ErrorIs(t, err, core.ErrBattleNotInProgress)
}

func TestExecuteBattleTurnVictoryAdvancesToConfrontation(t *testing.T) {
	m, store := newManager(t)
	// Scripted draw of 50 kills a 40 HP enemy in one turn.
	seedBattlePhase(t, store, "Chronos", &core.BattleState{
		Turn: 1, PlayerHP: 1000, EnemyHP: 40, Status: core.BattleInProgress,
	})

	b, err := m.ExecuteBattleTurn("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.BattleVictory, b.Status)

	enc, err := store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.PhaseConfrontation, enc.Phase)
}

func TestExecuteBattleTurnDefeatKeepsBattlePhase(t *testing.T) {
	m, store := newManager(t)
	seedBattlePhase(t, store, "Chronos", &core.BattleState{
		Turn: 4, PlayerHP: 10, EnemyHP: 5000, Status: core.BattleInProgress,
	})

	b, err := m.ExecuteBattleTurn("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.BattleDefeat, b.Status)
	assert.Equal(t, 5, b.Turn, "the lost battle keeps its history")

	enc, err := store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.PhaseBattle, enc.Phase, "a lost battle awaits retry or retreat")
	require.NotNil(t, enc.Battle)
	assert.Equal(t, core.BattleDefeat, enc.Battle.Status)

	// Retrying re-seeds a fresh army instead of resuming the lost one.
	again, err := m.StartBattle("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Turn)
	assert.Equal(t, core.BattleInProgress, again.Status)
}

func seedConfrontation(t *testing.T, store core.SessionStore, oracle string) {
	t.Helper()
	enc, err := store.GetEncounter("run-1", oracle)
	require.NoError(t, err)
	enc.Phase = core.PhaseConfrontation
	enc.Accessible = true
	require.NoError(t, store.SaveEncounter("run-1", enc))
}

func TestDefeatGrantsRewardsOnce(t *testing.T) {
	m, store := newManager(t)
	seedConfrontation(t, store, "Chronos")

	s, err := m.Defeat("run-1", "Chronos")
	require.NoError(t, err)

	assert.Equal(t, 1, s.OraclesDefeated)
	assert.Equal(t, 2, s.Stage)
	assert.Equal(t, session.StartingGold+DefeatGold, s.Gold)
	assert.Equal(t, session.StartingInsightTokens+DefeatInsightTokens, s.InsightTokens)
	assert.Contains(t, s.Weapons, "Temporal Dagger")
	require.Len(t, s.Army, 2)
	assert.Equal(t, "Temporal Guards", s.Army[1].Name)
	assert.False(t, s.Completed)

	enc, err := store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.PhaseDefeated, enc.Phase)
	assert.True(t, enc.Defeated)
	assert.False(t, enc.Hostile)
	assert.True(t, enc.RewardsGranted)
	require.NotNil(t, enc.DefeatedAt)

	next, err := store.GetEncounter("run-1", "Nyx")
	require.NoError(t, err)
	assert.True(t, next.Accessible, "defeat unlocks the next oracle")

	_, err = m.Defeat("run-1", "Chronos")
	assert.ErrorIs(t, err, core.ErrAlreadyDefeated, "rewards never double-apply")
}

func TestDefeatRequiresConfrontation(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Defeat("run-1", "Chronos")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotAccessible)
}

func TestDefeatingAllThirteenCompletesTheRun(t *testing.T) {
	m, store := newManager(t)

	var last *core.GameSession
	for _, p := range core.DefaultProfiles() {
		seedConfrontation(t, store, p.Name)
		s, err := m.Defeat("run-1", p.Name)
		require.NoError(t, err, p.Name)
		last = s
	}

	assert.Equal(t, core.TotalOracles, last.OraclesDefeated)
	assert.Equal(t, core.TotalOracles, last.Stage, "stage is capped at the final dominion")
	assert.True(t, last.Completed)
	require.NotNil(t, last.CompletedAt)
}

// slowSessionStore widens the read-compute-write window so interleavings
// that lose updates actually manifest.
type slowSessionStore struct {
	core.SessionStore
	delay time.Duration
}

func (s *slowSessionStore) GetSession(id string) (*core.GameSession, error) {
	sess, err := s.SessionStore.GetSession(id)
	time.Sleep(s.delay)
	return sess, err
}

func newSlowManager(t *testing.T) (*Manager, core.SessionStore) {
	t.Helper()
	inner := session.NewInMemoryStore()
	_, err := inner.CreateSession("run-1")
	require.NoError(t, err)
	store := &slowSessionStore{SessionStore: inner, delay: 50 * time.Millisecond}

	reg := agent.NewRegistry(gateway.NewMockGateway(), memory.NewInMemoryStore())
	return NewManager(store, reg), store
}

func TestUseInsightTokenConcurrentSpendsOfLastToken(t *testing.T) {
	m, store := newSlowManager(t)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := m.UseInsightToken("run-1")
			errs <- err
		}()
	}
	var failures int
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			assert.ErrorIs(t, err, core.ErrInsufficientResource)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "only one spend of the last token succeeds")

	s, err := store.GetSession("run-1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.InsightTokens)
}

func TestConcurrentDefeatsKeepAggregatesExact(t *testing.T) {
	m, store := newSlowManager(t)
	seedConfrontation(t, store, "Chronos")
	seedConfrontation(t, store, "Nyx")

	errs := make(chan error, 2)
	for _, oracle := range []string{"Chronos", "Nyx"} {
		oracle := oracle
		go func() {
			_, err := m.Defeat("run-1", oracle)
			errs <- err
		}()
	}
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	s, err := store.GetSession("run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.OraclesDefeated)
	assert.Equal(t, session.StartingGold+2*DefeatGold, s.Gold)
	assert.Equal(t, session.StartingInsightTokens+2*DefeatInsightTokens, s.InsightTokens)
}

func TestApplyStanceShift(t *testing.T) {
	m, store := newManager(t)

	require.NoError(t, m.ApplyStanceShift("run-1", "Nyx", core.StanceMoreHostile))
	enc, err := store.GetEncounter("run-1", "Nyx")
	require.NoError(t, err)
	assert.InDelta(t, -0.7, enc.Stance, 1e-9)

	require.NoError(t, m.ApplyStanceShift("run-1", "Nyx", core.StanceNeutral))
	enc, err = store.GetEncounter("run-1", "Nyx")
	require.NoError(t, err)
	assert.InDelta(t, -0.7, enc.Stance, 1e-9, "neutral leaves the stance alone")

	err = m.ApplyStanceShift("run-1", "Nyx", "vengeful")
	assert.ErrorIs(t, err, core.ErrValidationFailed)
}

type behaviorDeadlines struct {
	inner Behaviors
	saw   *bool
}

func (d behaviorDeadlines) Lookup(name string) (agent.Behavior, error) {
	b, err := d.inner.Lookup(name)
	if err != nil {
		return nil, err
	}
	return &deadlineBehavior{Behavior: b, saw: d.saw}, nil
}

type deadlineBehavior struct {
	agent.Behavior
	saw *bool
}

func (d *deadlineBehavior) GeneratePuzzle(ctx context.Context, difficulty int, playerContext map[string]any) (core.PuzzleSkeleton, error) {
	_, ok := ctx.Deadline()
	*d.saw = ok
	return d.Behavior.GeneratePuzzle(ctx, difficulty, playerContext)
}

func TestRequestPuzzleBoundsGeneration(t *testing.T) {
	store := session.NewInMemoryStore()
	_, err := store.CreateSession("run-1")
	require.NoError(t, err)

	var sawDeadline bool
	reg := agent.NewRegistry(gateway.NewMockGateway(), memory.NewInMemoryStore())
	m := NewManager(store, behaviorDeadlines{inner: reg, saw: &sawDeadline})

	_, err = m.SelectOracle("run-1", "Chronos")
	require.NoError(t, err)
	_, err = m.RequestPuzzle(context.Background(), "run-1", "Chronos", nil)
	require.NoError(t, err)
	assert.True(t, sawDeadline, "generation runs under the puzzle timeout")
}

func TestApplyEffectBoostsSurvivingHostileArmies(t *testing.T) {
	m, store := newManager(t)

	enc, err := store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	enc.Defeated = true
	require.NoError(t, store.SaveEncounter("run-1", enc))

	enc, err = store.GetEncounter("run-1", "Gaia")
	require.NoError(t, err)
	enc.Hostile = false
	require.NoError(t, store.SaveEncounter("run-1", enc))

	err = m.ApplyEffect("run-1", "Aresion", &core.Effect{
		Name:      "army_boost",
		Magnitude: 1.2,
		Target:    "all_hostile_oracles",
	})
	require.NoError(t, err)

	for _, name := range []string{"Aresion", "Chronos", "Gaia"} {
		enc, err = store.GetEncounter("run-1", name)
		require.NoError(t, err)
		assert.Zero(t, enc.ArmyBoostApplied, name)
	}
	enc, err = store.GetEncounter("run-1", "Nyx")
	require.NoError(t, err)
	assert.InDelta(t, 1.2, enc.ArmyBoostApplied, 1e-9)
}

func TestApplyEffectRecordsActiveRule(t *testing.T) {
	m, store := newManager(t)

	err := m.ApplyEffect("run-1", "Nyx", &core.Effect{
		Name:      "shadow_veil",
		Magnitude: 1.0 / 3.0,
		Duration:  3,
		Target:    "puzzle",
	})
	require.NoError(t, err)

	enc, err := store.GetEncounter("run-1", "Nyx")
	require.NoError(t, err)
	rule, ok := enc.ActiveRules["shadow_veil"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, rule["duration_turns"])
	assert.Equal(t, "puzzle", rule["target"])

	assert.NoError(t, m.ApplyEffect("run-1", "Nyx", nil), "nil effect is a no-op")
}

func TestUseInsightToken(t *testing.T) {
	m, _ := newManager(t)

	remaining, err := m.UseInsightToken("run-1")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	_, err = m.UseInsightToken("run-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInsufficientResource))
}

func TestEncounterMutationsAreSerialized(t *testing.T) {
	m, store := newManager(t)
	seedBattlePhase(t, store, "Chronos", &core.BattleState{
		Turn: 1, PlayerHP: 1e6, EnemyHP: 1e6, Status: core.BattleInProgress,
	})

	const turns = 25
	done := make(chan error, turns)
	for i := 0; i < turns; i++ {
		go func() {
			_, err := m.ExecuteBattleTurn("run-1", "Chronos")
			done <- err
		}()
	}
	for i := 0; i < turns; i++ {
		require.NoError(t, <-done)
	}

	enc, err := store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, turns+1, enc.Battle.Turn, "every concurrent turn is applied exactly once")
}
