package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astraeum/oraclecore/core"
)

func TestCreateSessionSeedsResources(t *testing.T) {
	store := NewInMemoryStore()

	s, err := store.CreateSession("run-1")
	require.NoError(t, err)

	assert.Equal(t, 1, s.Stage)
	assert.Equal(t, StartingGold, s.Gold)
	assert.Equal(t, StartingInsightTokens, s.InsightTokens)
	assert.Equal(t, StartingHealingDraughts, s.HealingDraughts)
	assert.Equal(t, []string{StartingWeapon}, s.Weapons)
	require.Len(t, s.Army, 1)
	assert.True(t, s.Army[0].Deployed)
	assert.False(t, s.Completed)
}

func TestCreateSessionSeedsEncounters(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.CreateSession("run-1")
	require.NoError(t, err)

	encs, err := store.ListEncounters("run-1")
	require.NoError(t, err)
	require.Len(t, encs, core.TotalOracles)

	for i, enc := range encs {
		assert.Equal(t, core.PhaseLocked, enc.Phase)
		assert.True(t, enc.Hostile)
		assert.InDelta(t, -0.5, enc.Stance, 1e-9)
		if i == 0 {
			assert.Equal(t, core.FirstOracle(), enc.Oracle)
			assert.True(t, enc.Accessible, "first oracle starts selectable")
		} else {
			assert.False(t, enc.Accessible)
		}
	}
}

func TestCreateSessionGeneratesIDWhenEmpty(t *testing.T) {
	store := NewInMemoryStore()
	s, err := store.CreateSession("")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
}

func TestCreateSessionRejectsDuplicate(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.CreateSession("run-1")
	require.NoError(t, err)
	_, err = store.CreateSession("run-1")
	assert.Error(t, err)
}

func TestReadsReturnCopies(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.CreateSession("run-1")
	require.NoError(t, err)

	a, err := store.GetSession("run-1")
	require.NoError(t, err)
	a.Gold = 9999
	a.Weapons = append(a.Weapons, "Stolen Sword")

	b, err := store.GetSession("run-1")
	require.NoError(t, err)
	assert.Equal(t, StartingGold, b.Gold, "mutating a read copy must not touch the store")
	assert.Len(t, b.Weapons, 1)

	enc, err := store.GetEncounter("run-1", core.FirstOracle())
	require.NoError(t, err)
	enc.Stance = 1.0

	again, err := store.GetEncounter("run-1", core.FirstOracle())
	require.NoError(t, err)
	assert.InDelta(t, -0.5, again.Stance, 1e-9)
}

func TestSaveSessionRoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	s, err := store.CreateSession("run-1")
	require.NoError(t, err)

	s.Gold += 500
	s.OraclesDefeated = 1
	require.NoError(t, store.SaveSession(s))

	got, err := store.GetSession("run-1")
	require.NoError(t, err)
	assert.Equal(t, StartingGold+500, got.Gold)
	assert.Equal(t, 1, got.OraclesDefeated)
	assert.False(t, got.LastSave.IsZero())
}

func TestSaveSessionUnknown(t *testing.T) {
	store := NewInMemoryStore()
	err := store.SaveSession(&core.GameSession{ID: "ghost"})
	assert.Error(t, err)
}

func TestSaveEncounterRoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.CreateSession("run-1")
	require.NoError(t, err)

	enc, err := store.GetEncounter("run-1", "Nyx")
	require.NoError(t, err)
	enc.Phase = core.PhaseExploration
	enc.Accessible = true
	require.NoError(t, store.SaveEncounter("run-1", enc))

	got, err := store.GetEncounter("run-1", "Nyx")
	require.NoError(t, err)
	assert.Equal(t, core.PhaseExploration, got.Phase)
	assert.True(t, got.Accessible)
}

func TestGetEncounterUnknownOracle(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.CreateSession("run-1")
	require.NoError(t, err)

	_, err = store.GetEncounter("run-1", "Hades")
	assert.ErrorIs(t, err, core.ErrUnknownOracle)
}

func TestDeleteSessionCascades(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.CreateSession("run-1")
	require.NoError(t, err)

	require.NoError(t, store.DeleteSession("run-1"))

	_, err = store.GetSession("run-1")
	assert.Error(t, err)
	_, err = store.ListEncounters("run-1")
	assert.Error(t, err)
	assert.Error(t, store.DeleteSession("run-1"))
}
