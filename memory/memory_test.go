package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
)

func TestStoreAndRetrieveScoping(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_, err := s.Store(ctx, "Nyx", core.MemoryConversation, "player asked about shadows", "", 0.6, nil)
	require.NoError(t, err)
	_, err = s.Store(ctx, "Chronos", core.MemoryConversation, "player asked about time", "", 0.6, nil)
	require.NoError(t, err)

	got, err := s.RetrieveRelevant(ctx, "Nyx", "shadows", 5, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Nyx", got[0].Agent)
}

func TestImportanceFloor(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_, _ = s.Store(ctx, "Gaia", core.MemoryConversation, "idle chatter about roots", "", 0.3, nil)
	_, _ = s.Store(ctx, "Gaia", core.MemoryOutcome, "player solved the living maze", "", 0.9, nil)

	got, err := s.RetrieveRelevant(ctx, "Gaia", "maze", 5, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.MemoryOutcome, got[0].Category)
}

func TestLexicalRankingOrdersByOverlap(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_, _ = s.Store(ctx, "Helios", core.MemoryConversation, "the player favors direct assault tactics", "", 0.6, nil)
	_, _ = s.Store(ctx, "Helios", core.MemoryConversation, "weather over the citadel was clear", "", 0.6, nil)

	got, err := s.RetrieveRelevant(ctx, "Helios", "player assault tactics", 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Content, "assault")
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestEmbeddingFailureDegradesNotFails(t *testing.T) {
	mock := gateway.NewMockGateway()
	mock.Err = errors.New("embedding backend down")
	s := NewInMemoryStore(func(o *Options) { o.Embedder = mock })

	id, err := s.Store(context.Background(), "Echo", core.MemoryConversation, "the player repeats themselves", "", 0.6, nil)
	require.NoError(t, err, "memory writes must not fail on embedding errors")
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, s.Len())
}

func TestRetrieveLimit(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = s.Store(ctx, "Selene", core.MemoryConversation, "moon phase discussion", "", 0.6, nil)
	}
	got, err := s.RetrieveRelevant(ctx, "Selene", "moon", 3, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float64{1}, []float64{1, 2}), "dimension mismatch scores zero")
	assert.Equal(t, 0.0, Cosine(nil, nil))
}
