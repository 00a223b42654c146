package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astraeum/oraclecore/agent"
	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/encounter"
	"github.com/astraeum/oraclecore/gateway"
	"github.com/astraeum/oraclecore/memory"
	"github.com/astraeum/oraclecore/session"
)

type fixture struct {
	orch  *Orchestrator
	store core.SessionStore
	gw    *gateway.MockGateway
	mem   *memory.InMemoryStore
}

func newFixture(t *testing.T, rand core.Rand, responses ...string) *fixture {
	t.Helper()
	store := session.NewInMemoryStore()
	_, err := store.CreateSession("run-1")
	require.NoError(t, err)

	gw := gateway.NewMockGateway(responses...)
	mem := memory.NewInMemoryStore()
	reg := agent.NewRegistry(gw, mem)
	mgr := encounter.NewManager(store, reg)

	orch := New(reg, store, mgr, gw, mem, func(o *Options) {
		o.Rand = rand
		o.Parallelism = 2
	})
	return &fixture{orch: orch, store: store, gw: gw, mem: mem}
}

// defeatAllExcept marks every oracle defeated except the named survivors.
func defeatAllExcept(t *testing.T, store core.SessionStore, survivors ...string) {
	t.Helper()
	keep := map[string]bool{}
	for _, s := range survivors {
		keep[s] = true
	}
	for _, p := range core.DefaultProfiles() {
		if keep[p.Name] {
			continue
		}
		enc, err := store.GetEncounter("run-1", p.Name)
		require.NoError(t, err)
		enc.Defeated = true
		require.NoError(t, store.SaveEncounter("run-1", enc))
	}
}

func TestRouteEventUnknownType(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{})
	_, err := f.orch.RouteEvent(context.Background(), core.GameEvent{Type: "meteor_strike", SessionID: "run-1"})
	assert.Error(t, err)
}

func TestChallengeDialogue(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{}, "Time flows only forward for you, mortal.")

	enc, err := f.store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	enc.Phase = core.PhaseExploration
	require.NoError(t, f.store.SaveEncounter("run-1", enc))

	res, err := f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventOracleChallenge, "run-1", map[string]any{
		"oracle":  "Chronos",
		"message": "What do you guard?",
	}))
	require.NoError(t, err)
	assert.Equal(t, ResultDialogue, res.Type)
	assert.Equal(t, "Chronos", res.Oracle)
	assert.Contains(t, res.Response, "Time flows")
}

func TestChallengePuzzle(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{},
		`{"puzzle_type":"temporal_sequence","description":"order the epochs","solution":"dawn noon dusk","hints":["begin at first light"]}`)

	enc, err := f.store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	enc.Phase = core.PhaseExploration
	require.NoError(t, f.store.SaveEncounter("run-1", enc))

	res, err := f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventOracleChallenge, "run-1", map[string]any{
		"oracle": "Chronos",
		"phase":  "puzzle",
	}))
	require.NoError(t, err)
	assert.Equal(t, ResultPuzzle, res.Type)
	require.NotNil(t, res.Puzzle)
	assert.Equal(t, "temporal_sequence", res.Puzzle.Type)

	enc, err = f.store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.PhasePuzzle, enc.Phase)
}

func TestChallengeTacticalDecision(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{}, "defend")

	enc, err := f.store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	enc.Phase = core.PhaseBattle
	enc.Battle = &core.BattleState{Turn: 3, PlayerHP: 400, EnemyHP: 600, Status: core.BattleInProgress}
	require.NoError(t, f.store.SaveEncounter("run-1", enc))

	res, err := f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventOracleChallenge, "run-1", map[string]any{
		"oracle": "Chronos",
	}))
	require.NoError(t, err)
	assert.Equal(t, ResultTactical, res.Type)
	assert.Equal(t, agent.ActionDefend, res.Action)
}

func TestChallengeBattleWithoutBattleState(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{})

	enc, err := f.store.GetEncounter("run-1", "Chronos")
	require.NoError(t, err)
	enc.Phase = core.PhaseBattle
	require.NoError(t, f.store.SaveEncounter("run-1", enc))

	_, err = f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventOracleChallenge, "run-1", map[string]any{
		"oracle": "Chronos",
	}))
	assert.ErrorIs(t, err, core.ErrBattleNotInProgress)
}

func TestChallengeUnknownOracle(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{})
	_, err := f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventOracleChallenge, "run-1", map[string]any{
		"oracle": "Hades",
	}))
	assert.ErrorIs(t, err, core.ErrUnknownOracle)
}

func TestBroadcastReactionGate(t *testing.T) {
	// Survivors in unlock order: Chronos (cunning 8), Nyx (9), Gaia (5).
	// Draws 0.75, 0.95, 0.45 gate Chronos and Gaia in, Nyx out.
	rand := &core.ScriptedRand{Floats: []float64{0.75, 0.95, 0.45}}
	f := newFixture(t, rand,
		`{"name":"temporal_tax","description":"every move costs an extra turn","scope":"global","magnitude":1.0,"duration_turns":3}`)
	defeatAllExcept(t, f.store, "Chronos", "Nyx", "Gaia")

	res, err := f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventPlayerAction, "run-1", map[string]any{
		"action": "player_used_insight",
	}))
	require.NoError(t, err)
	assert.Equal(t, ResultReactions, res.Type)
	require.Len(t, res.Reactions, 2)

	names := map[string]bool{}
	for _, r := range res.Reactions {
		names[r.Oracle] = true
		require.NotNil(t, r.RuleChange)
		assert.Equal(t, "temporal_tax", r.RuleChange.Name)
	}
	assert.True(t, names["Chronos"])
	assert.True(t, names["Gaia"])
}

func TestBroadcastStoresRuleChangeMemories(t *testing.T) {
	rand := &core.ScriptedRand{Floats: []float64{0.0}}
	f := newFixture(t, rand,
		`{"name":"veil","description":"hints fade faster","scope":"puzzle","magnitude":0.5,"duration_turns":2}`)
	defeatAllExcept(t, f.store, "Nyx")

	res, err := f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventPlayerAction, "run-1", nil))
	require.NoError(t, err)
	require.Len(t, res.Reactions, 1)

	records, err := f.mem.RetrieveRelevant(context.Background(), "Nyx", "hints fade", 5, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, core.MemoryRuleChange, records[0].Category)
	assert.InDelta(t, ruleChangeImportance, records[0].Importance, 1e-9)
}

func TestBroadcastDropsUnparseableProposals(t *testing.T) {
	rand := &core.ScriptedRand{Floats: []float64{0.0}}
	f := newFixture(t, rand, "the void does not speak JSON")
	defeatAllExcept(t, f.store, "Typhon")

	res, err := f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventPlayerAction, "run-1", nil))
	require.NoError(t, err, "agent failure never fails the broadcast")
	assert.Empty(t, res.Reactions)
}

func TestBroadcastSkipsDefeatedOracles(t *testing.T) {
	rand := &core.ScriptedRand{Floats: []float64{0.0}}
	f := newFixture(t, rand,
		`{"name":"surge","description":"enemies hit harder","scope":"combat","magnitude":1.2,"duration_turns":1}`)
	defeatAllExcept(t, f.store)

	res, err := f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventPlayerAction, "run-1", nil))
	require.NoError(t, err)
	assert.Empty(t, res.Reactions, "a fully defeated roster reacts to nothing")
}

func TestDefeatCascade(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{},
		`{"stance_change":"more_hostile","strategy_adjustment":"strike before the player grows stronger","message_to_player":"You will regret this."}`)
	defeatAllExcept(t, f.store, "Nyx", "Typhon")

	res, err := f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventOracleDefeated, "run-1", map[string]any{
		"oracle": "Chronos",
	}))
	require.NoError(t, err)
	require.Len(t, res.Reactions, 2)
	for _, r := range res.Reactions {
		require.NotNil(t, r.Stance)
		assert.Equal(t, core.StanceMoreHostile, r.Stance.StanceChange)
		assert.NotEmpty(t, r.Stance.StrategyAdjustment)
	}

	// Survivors record the outcome with failure weighting.
	records, err := f.mem.RetrieveRelevant(context.Background(), "Nyx", "ally_defeated", 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.InDelta(t, 0.9, records[0].Importance, 1e-9)

	// The shift lands on each survivor's persisted stance.
	for _, name := range []string{"Nyx", "Typhon"} {
		enc, err := f.store.GetEncounter("run-1", name)
		require.NoError(t, err)
		assert.InDelta(t, -0.7, enc.Stance, 1e-9, name)
	}
}

func TestDefeatCascadeDropsInvalidStances(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{},
		`{"stance_change":"vengeful_rampage","strategy_adjustment":"x"}`)
	defeatAllExcept(t, f.store, "Nyx")

	res, err := f.orch.RouteEvent(context.Background(), core.NewGameEvent(core.EventOracleDefeated, "run-1", map[string]any{
		"oracle": "Chronos",
	}))
	require.NoError(t, err)
	assert.Empty(t, res.Reactions, "stances outside the allowed set are dropped")
}

type deadlineGateway struct {
	gateway.Gateway
	sawDeadline bool
}

func (g *deadlineGateway) Generate(ctx context.Context, req gateway.Request) (string, error) {
	_, g.sawDeadline = ctx.Deadline()
	return g.Gateway.Generate(ctx, req)
}

func TestInsightHintBoundsGeneration(t *testing.T) {
	store := session.NewInMemoryStore()
	_, err := store.CreateSession("run-1")
	require.NoError(t, err)

	gw := &deadlineGateway{Gateway: gateway.NewMockGateway("Look to the first light.")}
	mem := memory.NewInMemoryStore()
	reg := agent.NewRegistry(gw, mem)
	mgr := encounter.NewManager(store, reg)
	orch := New(reg, store, mgr, gw, mem, func(o *Options) {
		o.HintTimeout = time.Second
	})

	hint, remaining, err := orch.InsightHint(context.Background(), "run-1", "where do I begin", "")
	require.NoError(t, err)
	assert.Contains(t, hint, "first light")
	assert.Equal(t, 0, remaining)
	assert.True(t, gw.sawDeadline, "hint generation carries its own timeout")
}

func TestTriggerSpecialAbilityBoostsHostileOracles(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{})

	eff, err := f.orch.TriggerSpecialAbility(context.Background(), "run-1", "Aresion")
	require.NoError(t, err)
	require.NotNil(t, eff)
	assert.Equal(t, "army_boost", eff.Name)

	for _, p := range core.DefaultProfiles() {
		enc, err := f.store.GetEncounter("run-1", p.Name)
		require.NoError(t, err)
		if p.Name == "Aresion" {
			assert.Zero(t, enc.ArmyBoostApplied, "the caster does not boost itself")
			continue
		}
		assert.InDelta(t, 1.2, enc.ArmyBoostApplied, 1e-9, p.Name)
	}

	records, err := f.mem.RetrieveRelevant(context.Background(), "Aresion", "army_boost", 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, core.MemorySpecialAbility, records[0].Category)
}

func TestTriggerSpecialAbilityTargetsOwnEncounter(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{})

	eff, err := f.orch.TriggerSpecialAbility(context.Background(), "run-1", "Nyx")
	require.NoError(t, err)
	require.NotNil(t, eff)

	enc, err := f.store.GetEncounter("run-1", "Nyx")
	require.NoError(t, err)
	rule, ok := enc.ActiveRules["shadow_veil"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, rule["duration_turns"])
}

func TestTriggerSpecialAbilityNilForPlainOracles(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{})

	eff, err := f.orch.TriggerSpecialAbility(context.Background(), "run-1", "Echo")
	require.NoError(t, err)
	assert.Nil(t, eff)
}

func TestInsightHint(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{}, "Consider what order the celestial bodies rise in.")

	hint, remaining, err := f.orch.InsightHint(context.Background(), "run-1", "How do I order the sequence?", "temporal_sequence")
	require.NoError(t, err)
	assert.Contains(t, hint, "celestial")
	assert.Equal(t, 0, remaining)

	_, _, err = f.orch.InsightHint(context.Background(), "run-1", "Another hint?", "")
	assert.True(t, errors.Is(err, core.ErrInsufficientResource))
}

func TestInsightHintDegradesOnInferenceFailure(t *testing.T) {
	f := newFixture(t, &core.ScriptedRand{})
	f.gw.Err = errors.New("backend down")

	hint, remaining, err := f.orch.InsightHint(context.Background(), "run-1", "Help?", "")
	require.NoError(t, err, "hint failure degrades, the token stays spent")
	assert.NotEmpty(t, hint)
	assert.Equal(t, 0, remaining)

	s, err := f.store.GetSession("run-1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.InsightTokens)
}
