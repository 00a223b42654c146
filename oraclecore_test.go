package oraclecore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astraeum/oraclecore/config"
	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
	"github.com/astraeum/oraclecore/internal/testutil"
)

func newTestEngine(t *testing.T, gw gateway.Gateway, rand core.Rand) *Engine {
	t.Helper()
	if gw == nil {
		gw = gateway.NewMockGateway()
	}
	e, err := New(func(o *Options) {
		o.Gateway = gw
		o.Rand = rand
	})
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.ReactionDivisor = -1
	_, err := New(func(o *Options) {
		o.Config = cfg
		o.Gateway = gateway.NewMockGateway()
	})
	assert.Error(t, err)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Inference.Provider = "delphi"
	_, err := New(func(o *Options) { o.Config = cfg })
	assert.Error(t, err)
}

func TestFullEncounterFlow(t *testing.T) {
	gw := gateway.NewMockGateway(
		`{"puzzle_type":"temporal_sequence","description":"arrange the moments","solution":"dawn noon dusk midnight","hints":["start at first light"]}`,
	)
	// Alternating draws: the player always rolls maximum damage (150), the
	// enemy always rolls minimum (40), so the battle ends in victory.
	e := newTestEngine(t, gw, &core.ScriptedRand{Ints: []int{100, 0}})

	s, err := e.NewGame("run-1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Stage)

	encs, err := e.Encounters("run-1")
	require.NoError(t, err)
	require.Len(t, encs, core.TotalOracles)

	_, err = e.SelectOracle("run-1", "Chronos")
	require.NoError(t, err)

	st, err := e.RequestPuzzle(context.Background(), "run-1", "Chronos", nil)
	require.NoError(t, err)
	assert.Equal(t, "temporal_sequence", st.Type)

	res, err := e.SubmitAnswer("run-1", "Chronos", "dawn noon dusk midnight")
	require.NoError(t, err)
	require.True(t, res.Correct)

	b, err := e.StartBattle("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, core.BattleInProgress, b.Status)

	for b.Status == core.BattleInProgress {
		b, err = e.ExecuteBattleTurn("run-1", "Chronos")
		require.NoError(t, err)
	}
	require.Equal(t, core.BattleVictory, b.Status, "a 150 vs 40 exchange always favors the player")

	s, err = e.DefeatOracle("run-1", "Chronos")
	require.NoError(t, err)
	assert.Equal(t, 1, s.OraclesDefeated)
	assert.Equal(t, 2, s.Stage)
	assert.Contains(t, s.Weapons, "Temporal Dagger")

	next, err := e.SelectOracle("run-1", "Nyx")
	require.NoError(t, err)
	assert.Equal(t, core.PhaseExploration, next.Phase)

	_, err = e.DefeatOracle("run-1", "Chronos")
	assert.ErrorIs(t, err, core.ErrAlreadyDefeated)
}

func TestServePumpsDefeatCascade(t *testing.T) {
	gw := gateway.NewMockGateway(
		`{"stance_change":"cautious","strategy_adjustment":"observe before engaging"}`)
	e := newTestEngine(t, gw, &core.ScriptedRand{})

	_, err := e.NewGame("run-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = e.Serve(ctx) }()

	e.PublishEvent(testutil.NewEventBuilder(core.EventOracleDefeated, "run-1").Oracle("Chronos").Build())

	seen := map[string]bool{}
	for len(seen) < core.TotalOracles-1 {
		r, ok := e.Reactions(ctx)
		require.True(t, ok, "expected %d cascade reactions, got %d", core.TotalOracles-1, len(seen))
		require.NotNil(t, r.Stance)
		assert.Equal(t, core.StanceCautious, r.Stance.StanceChange)
		seen[r.Oracle] = true
	}
	assert.False(t, seen["Chronos"], "the defeated oracle does not react to itself")
}

func TestInsightHintThroughFacade(t *testing.T) {
	gw := gateway.NewMockGateway("Seek the order in which light leaves the sky.")
	e := newTestEngine(t, gw, &core.ScriptedRand{})

	_, err := e.NewGame("run-1")
	require.NoError(t, err)

	hint, remaining, err := e.InsightHint(context.Background(), "run-1", "What comes after dusk?", "temporal_sequence")
	require.NoError(t, err)
	assert.Contains(t, hint, "light")
	assert.Equal(t, 0, remaining)

	_, _, err = e.InsightHint(context.Background(), "run-1", "More?", "")
	assert.ErrorIs(t, err, core.ErrInsufficientResource)
}

func TestSessionBuilderDefaults(t *testing.T) {
	s := testutil.NewSessionBuilder("run-9").Gold(750).Defeated(12).Build()
	assert.Equal(t, 750, s.Gold)
	assert.Equal(t, 13, s.Stage)
	require.Len(t, s.Army, 1)
	assert.True(t, s.Army[0].Deployed)
}
