// Package vectorstore defines the chunk index used for similarity search.
package vectorstore

import "context"

type Chunk struct {
	ID         string
	DocumentID string
	Source     string // original filename
	Page       int    // 1-based
	Index      int    // position of the chunk within its document
	Content    string
	Embedding  []float32
}

type ScoredChunk struct {
	Chunk
	Score float64 // cosine similarity, higher is closer
}

// Index stores embedded chunks. Implementations must be safe for concurrent use.
type Index interface {
	Insert(ctx context.Context, chunks []Chunk) error
	// Search returns up to k chunks ordered by descending score.
	Search(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error)
	// DeleteBySource removes every chunk of source and reports how many were removed.
	DeleteBySource(ctx context.Context, source string) (int, error)
	CountBySource(ctx context.Context, source string) (int, error)
	Close() error
}
