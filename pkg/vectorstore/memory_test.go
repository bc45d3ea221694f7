package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndex(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Insert(ctx, []Chunk{
		{ID: "1", Source: "a.txt", Page: 1, Content: "alpha", Embedding: []float32{1, 0}},
		{ID: "2", Source: "a.txt", Page: 2, Content: "beta", Embedding: []float32{0, 1}},
		{ID: "3", Source: "b.txt", Page: 1, Content: "gamma", Embedding: []float32{0.7, 0.7}},
	}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "1", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, "3", hits[1].ID)

	n, err := idx.CountBySource(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	removed, err := idx.DeleteBySource(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	n, err = idx.CountBySource(ctx, "a.txt")
	require.NoError(t, err)
	assert.Zero(t, n)

	hits, err = idx.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-2, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
