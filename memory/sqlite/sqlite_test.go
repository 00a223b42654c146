package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
)

func newTestStore(t *testing.T, optFns ...func(o *Options)) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "memory.db"), optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPersistAndRetrieve(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Store(ctx, "Chronos", core.MemoryPuzzleMod, "reduced time limit after fast solve", "puzzle retry", 0.7, map[string]string{"puzzle": "temporal_sequence"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := s.RetrieveRelevant(ctx, "Chronos", "time limit", 5, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.MemoryPuzzleMod, got[0].Category)
	assert.Equal(t, "temporal_sequence", got[0].Metadata["puzzle"])
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestAgentScopingAndFloor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _ = s.Store(ctx, "Nyx", core.MemoryDeception, "lied about the third hint", "", 0.8, nil)
	_, _ = s.Store(ctx, "Nyx", core.MemoryConversation, "small talk about darkness", "", 0.2, nil)
	_, _ = s.Store(ctx, "Themis", core.MemoryConversation, "weighed the player's honesty", "", 0.8, nil)

	got, err := s.RetrieveRelevant(ctx, "Nyx", "hint", 10, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Nyx", got[0].Agent)
	assert.Equal(t, core.MemoryDeception, got[0].Category)
}

func TestSemanticRankingWithEmbedder(t *testing.T) {
	mock := gateway.NewMockGateway()
	s := newTestStore(t, func(o *Options) { o.Embedder = mock })
	ctx := context.Background()

	_, err := s.Store(ctx, "Proteus", core.MemoryConversation, "the player adapts quickly", "", 0.6, nil)
	require.NoError(t, err)

	// The mock embedder is deterministic over bytes, so the identical text
	// must rank at full similarity.
	got, err := s.RetrieveRelevant(ctx, "Proteus", "the player adapts quickly", 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
}

func TestZeroLimitReturnsNothing(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.Store(context.Background(), "Boreas", core.MemoryConversation, "a cold exchange", "", 0.6, nil)
	got, err := s.RetrieveRelevant(context.Background(), "Boreas", "cold", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
