package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex keeps chunks in a slice and scores them by brute force.
type MemoryIndex struct {
	mu     sync.RWMutex
	chunks []Chunk
}

var _ Index = &MemoryIndex{}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Insert(ctx context.Context, chunks []Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scored := make([]ScoredChunk, 0, len(m.chunks))
	for _, c := range m.chunks {
		scored = append(scored, ScoredChunk{Chunk: c, Score: CosineSimilarity(embedding, c.Embedding)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (m *MemoryIndex) DeleteBySource(ctx context.Context, source string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.chunks[:0]
	removed := 0
	for _, c := range m.chunks {
		if c.Source == source {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept
	return removed, nil
}

func (m *MemoryIndex) CountBySource(ctx context.Context, source string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, c := range m.chunks {
		if c.Source == source {
			n++
		}
	}
	return n, nil
}

func (m *MemoryIndex) Close() error { return nil }

// CosineSimilarity returns 0 when either vector is zero or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
