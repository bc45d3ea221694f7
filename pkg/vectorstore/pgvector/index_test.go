package pgvector

import (
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"

	"rag-chatbot-be/pkg/vectorstore"
)

func TestRecordRoundTrip(t *testing.T) {
	c := vectorstore.Chunk{
		ID:         "5b0c6c1e-1f7e-4e8e-9a52-5f3c1c1d0a01",
		DocumentID: "0e0b4f0c-2b52-4d4d-8f5b-0a0e3c1b2d03",
		Source:     "report.pdf",
		Page:       4,
		Index:      2,
		Content:    "Quarterly figures",
		Embedding:  []float32{0.1, 0.2},
	}

	rec := toRecord(c)
	assert.Equal(t, "report.pdf", rec.Source)
	assert.Equal(t, 2, rec.ChunkIndex)
	assert.Equal(t, []float32{0.1, 0.2}, rec.Embedding.Slice())

	scored := toScoredChunk(scoredRecord{chunkRecord: rec, Similarity: 0.87})
	assert.Equal(t, c, scored.Chunk)
	assert.Equal(t, 0.87, scored.Score)
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "document_chunks", chunkRecord{Embedding: pgvector.NewVector(nil)}.TableName())
}

func TestNew_RejectsBadDimensions(t *testing.T) {
	_, err := New(nil, 0)
	assert.Error(t, err)
}
