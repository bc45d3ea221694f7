// Package pgvector stores chunks in Postgres using the pgvector extension.
package pgvector

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"rag-chatbot-be/pkg/vectorstore"
)

const tableName = "document_chunks"

type chunkRecord struct {
	Id         string          `gorm:"type:uuid;primaryKey"`
	DocumentId string          `gorm:"type:uuid;index"`
	Source     string          `gorm:"type:text;index"`
	Page       int             `gorm:"default:1"`
	ChunkIndex int             `gorm:"default:0"`
	Content    string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector"`
}

func (chunkRecord) TableName() string {
	return tableName
}

type scoredRecord struct {
	chunkRecord
	Similarity float64
}

type Index struct {
	db *gorm.DB
}

var _ vectorstore.Index = &Index{}

// New creates the chunk table with a fixed vector width and an HNSW cosine index.
func New(db *gorm.DB, dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("invalid embedding dimensions %d", dimensions)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id uuid PRIMARY KEY,
		document_id uuid NOT NULL,
		source text NOT NULL,
		page integer NOT NULL DEFAULT 1,
		chunk_index integer NOT NULL DEFAULT 0,
		content text NOT NULL,
		embedding vector(%d) NOT NULL
	)`, tableName, dimensions)

	steps := []string{
		ddl,
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_source ON %s (source)", tableName, tableName),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_embedding ON %s USING hnsw (embedding vector_cosine_ops)", tableName, tableName),
	}
	for _, q := range steps {
		if err := db.Exec(q).Error; err != nil {
			return nil, fmt.Errorf("migrate %s: %w", tableName, err)
		}
	}

	return &Index{db: db}, nil
}

func toRecord(c vectorstore.Chunk) chunkRecord {
	return chunkRecord{
		Id:         c.ID,
		DocumentId: c.DocumentID,
		Source:     c.Source,
		Page:       c.Page,
		ChunkIndex: c.Index,
		Content:    c.Content,
		Embedding:  pgvector.NewVector(c.Embedding),
	}
}

func toScoredChunk(r scoredRecord) vectorstore.ScoredChunk {
	return vectorstore.ScoredChunk{
		Chunk: vectorstore.Chunk{
			ID:         r.Id,
			DocumentID: r.DocumentId,
			Source:     r.Source,
			Page:       r.Page,
			Index:      r.ChunkIndex,
			Content:    r.Content,
			Embedding:  r.Embedding.Slice(),
		},
		Score: r.Similarity,
	}
}

func (i *Index) Insert(ctx context.Context, chunks []vectorstore.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	records := make([]chunkRecord, len(chunks))
	for j, c := range chunks {
		records[j] = toRecord(c)
	}
	return i.db.WithContext(ctx).CreateInBatches(records, 100).Error
}

// Search ranks by cosine distance (<=>) and reports 1 - distance as the score.
func (i *Index) Search(ctx context.Context, embedding []float32, k int) ([]vectorstore.ScoredChunk, error) {
	if k <= 0 {
		k = 4
	}
	queryVector := pgvector.NewVector(embedding)

	var rows []scoredRecord
	err := i.db.WithContext(ctx).
		Model(&chunkRecord{}).
		Select(tableName+".*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]vectorstore.ScoredChunk, len(rows))
	for j, r := range rows {
		out[j] = toScoredChunk(r)
	}
	return out, nil
}

func (i *Index) DeleteBySource(ctx context.Context, source string) (int, error) {
	res := i.db.WithContext(ctx).Where("source = ?", source).Delete(&chunkRecord{})
	return int(res.RowsAffected), res.Error
}

func (i *Index) CountBySource(ctx context.Context, source string) (int, error) {
	var n int64
	err := i.db.WithContext(ctx).Model(&chunkRecord{}).Where("source = ?", source).Count(&n).Error
	return int(n), err
}

func (i *Index) Close() error {
	sqlDB, err := i.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
