// Package tinysql stores chunks in an embedded tinySQL database using its VECTOR column type.
package tinysql

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	tinysql "github.com/SimonWaldherr/tinySQL"

	"rag-chatbot-be/pkg/vectorstore"
)

const (
	tenant      = "default"
	createTable = "CREATE TABLE IF NOT EXISTS chunks (id TEXT, document_id TEXT, source TEXT, page INT, chunk_idx INT, content TEXT, embedding VECTOR)"
)

type Index struct {
	// tinySQL is not built for concurrent writers
	mu   sync.Mutex
	db   *tinysql.DB
	mode tinysql.StorageMode
	path string
}

var _ vectorstore.Index = &Index{}

// Open creates or loads the index. mode is a tinySQL storage mode name
// (memory, wal, disk, index, hybrid); path is ignored for ephemeral memory mode.
func Open(mode, path string) (*Index, error) {
	storageMode, err := tinysql.ParseStorageMode(mode)
	if err != nil {
		return nil, fmt.Errorf("invalid tinysql storage mode %q: %w", mode, err)
	}

	cfg := tinysql.StorageConfig{Mode: storageMode, Path: path}
	if storageMode == tinysql.ModeIndex || storageMode == tinysql.ModeHybrid {
		cfg.MaxMemoryBytes = 256 * 1024 * 1024
	}

	db, err := tinysql.OpenDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open tinysql %s db: %w", mode, err)
	}

	idx := &Index{db: db, mode: storageMode, path: path}
	if err := idx.exec(context.Background(), createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create chunks table: %w", err)
	}
	return idx, nil
}

func (i *Index) exec(ctx context.Context, q string) error {
	stmt, err := tinysql.ParseSQL(q)
	if err != nil {
		return err
	}
	_, err = tinysql.Execute(ctx, i.db, tenant, stmt)
	return err
}

// persist flushes dirty tables for disk backed modes and snapshots the rest.
func (i *Index) persist() error {
	switch i.mode {
	case tinysql.ModeDisk, tinysql.ModeHybrid, tinysql.ModeIndex:
		return i.db.Sync()
	default:
		if i.path == "" {
			return nil
		}
		return tinysql.SaveToFile(i.db, i.path)
	}
}

func (i *Index) Insert(ctx context.Context, chunks []vectorstore.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	for _, c := range chunks {
		vec, err := vecJSON(c.Embedding)
		if err != nil {
			return err
		}
		q := fmt.Sprintf(
			"INSERT INTO chunks VALUES ('%s', '%s', '%s', %d, %d, '%s', VEC_FROM_JSON('%s'))",
			escapeSQ(c.ID), escapeSQ(c.DocumentID), encodeText(c.Source), c.Page, c.Index, encodeText(c.Content), vec,
		)
		if err := i.exec(ctx, q); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	return i.persist()
}

func (i *Index) Search(ctx context.Context, embedding []float32, k int) ([]vectorstore.ScoredChunk, error) {
	if k <= 0 {
		k = 4
	}
	vec, err := vecJSON(embedding)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(
		"SELECT id, document_id, source, page, chunk_idx, content, VEC_COSINE_SIMILARITY(embedding, VEC_FROM_JSON('%s')) AS score FROM chunks ORDER BY score DESC LIMIT %d",
		vec, k,
	)

	stmt, err := tinysql.ParseSQL(q)
	if err != nil {
		return nil, fmt.Errorf("parse similarity search: %w", err)
	}

	i.mu.Lock()
	rs, err := tinysql.Execute(ctx, i.db, tenant, stmt)
	i.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if rs == nil {
		return nil, nil
	}

	out := make([]vectorstore.ScoredChunk, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rawContent, ok := tinysql.GetVal(row, "content")
		if !ok || rawContent == nil {
			continue
		}
		content, err := decodeText(rawContent)
		if err != nil {
			return nil, fmt.Errorf("decode chunk content: %w", err)
		}
		id, _ := tinysql.GetVal(row, "id")
		docID, _ := tinysql.GetVal(row, "document_id")
		rawSource, _ := tinysql.GetVal(row, "source")
		source, err := decodeText(rawSource)
		if err != nil {
			return nil, fmt.Errorf("decode chunk source: %w", err)
		}
		page, _ := tinysql.GetVal(row, "page")
		chunkIdx, _ := tinysql.GetVal(row, "chunk_idx")
		score, _ := tinysql.GetVal(row, "score")

		out = append(out, vectorstore.ScoredChunk{
			Chunk: vectorstore.Chunk{
				ID:         str(id),
				DocumentID: str(docID),
				Source:     source,
				Page:       toInt(page),
				Index:      toInt(chunkIdx),
				Content:    content,
			},
			Score: toFloat(score),
		})
	}
	return out, nil
}

func (i *Index) CountBySource(ctx context.Context, source string) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.countLocked(ctx, source)
}

func (i *Index) countLocked(ctx context.Context, source string) (int, error) {
	q := fmt.Sprintf("SELECT COUNT(*) AS cnt FROM chunks WHERE source = '%s'", encodeText(source))
	stmt, err := tinysql.ParseSQL(q)
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	rs, err := tinysql.Execute(ctx, i.db, tenant, stmt)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	if rs == nil || len(rs.Rows) == 0 {
		return 0, nil
	}
	cnt, _ := tinysql.GetVal(rs.Rows[0], "cnt")
	return toInt(cnt), nil
}

func (i *Index) DeleteBySource(ctx context.Context, source string) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	n, err := i.countLocked(ctx, source)
	if err != nil || n == 0 {
		return 0, err
	}
	q := fmt.Sprintf("DELETE FROM chunks WHERE source = '%s'", encodeText(source))
	if err := i.exec(ctx, q); err != nil {
		return 0, fmt.Errorf("delete chunks: %w", err)
	}
	return n, i.persist()
}

func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.persist(); err != nil {
		return err
	}
	return i.db.Close()
}

func vecJSON(v []float32) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal vector: %w", err)
	}
	return string(b), nil
}

// Text columns hold base64 so that string literals stay ASCII; the tinySQL
// lexer reads literals byte by byte and would split multi-byte runes.
func encodeText(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func decodeText(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := base64.StdEncoding.DecodeString(fmt.Sprint(v))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func escapeSQ(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// tinySQL hands numbers back as int, int64 or float64 depending on the path.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
