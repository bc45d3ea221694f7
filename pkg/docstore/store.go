// Package docstore indexes uploaded documents and answers similarity queries over them.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/document"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/utils"
	"rag-chatbot-be/pkg/vectorstore"
)

var ErrEmptyFilename = errors.New("empty filename")

// MetadataStore persists the filename -> document id map.
type MetadataStore interface {
	Load() (map[string]string, error)
	Save(entries map[string]string) error
}

// File is an uploaded document.
type File struct {
	Name    string
	Content []byte
}

type AddResult struct {
	Added   []string
	Skipped []string
}

// Hit is one retrieved excerpt.
type Hit struct {
	Content string
	Source  string
	Page    int
	Score   float64
}

type Options struct {
	DocsDir      string
	ChunkSize    int
	ChunkOverlap int
	MinScore     float64
}

type Store struct {
	// serializes Add and Delete; the metadata map is only mutated under it
	mu       sync.Mutex
	index    vectorstore.Index
	embedder embedding.EmbeddingProvider
	meta     MetadataStore
	splitter *utils.TextSplitter
	docsDir  string
	minScore float64
	logger   logger.ILogger

	entries map[string]string
}

func New(index vectorstore.Index, embedder embedding.EmbeddingProvider, meta MetadataStore, opts Options, log logger.ILogger) (*Store, error) {
	entries, err := meta.Load()
	if err != nil {
		return nil, fmt.Errorf("load document metadata: %w", err)
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	if err := os.MkdirAll(opts.DocsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create docs dir: %w", err)
	}

	return &Store{
		index:    index,
		embedder: embedder,
		meta:     meta,
		splitter: utils.NewTextSplitter(opts.ChunkSize, opts.ChunkOverlap),
		docsDir:  opts.DocsDir,
		minScore: opts.MinScore,
		logger:   log,
		entries:  entries,
	}, nil
}

// normalizeName reduces an uploaded or requested filename to the metadata key.
// It returns "" when nothing usable is left.
func normalizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// Add indexes files not seen before. Known filenames and unsupported formats are skipped.
func (s *Store) Add(ctx context.Context, files []File) (AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res AddResult
	for _, f := range files {
		name := normalizeName(f.Name)
		if name == "" {
			return res, ErrEmptyFilename
		}
		if _, ok := s.entries[name]; ok {
			s.logger.Info("DocStore", "Skipping already indexed document", map[string]interface{}{"filename": name})
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if !document.Supported(name) {
			s.logger.Warn("DocStore", "Skipping unsupported document", map[string]interface{}{"filename": name})
			res.Skipped = append(res.Skipped, name)
			continue
		}

		if err := s.addOne(ctx, name, f.Content); err != nil {
			return res, fmt.Errorf("index %s: %w", name, err)
		}
		res.Added = append(res.Added, name)
	}
	return res, nil
}

func (s *Store) addOne(ctx context.Context, name string, content []byte) error {
	path := filepath.Join(s.docsDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("persist upload: %w", err)
	}

	pages, err := document.Extract(path)
	if err != nil {
		_ = os.Remove(path)
		return err
	}

	docID := uuid.NewString()
	var chunks []vectorstore.Chunk
	for _, p := range pages {
		for _, text := range s.splitter.Split(p.Text) {
			chunks = append(chunks, vectorstore.Chunk{
				ID:         uuid.NewString(),
				DocumentID: docID,
				Source:     name,
				Page:       p.Number,
				Index:      len(chunks),
				Content:    text,
			})
		}
	}

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		vectors, err := s.embedder.GenerateBatch(ctx, texts, embedding.TaskRetrievalDocument)
		if err != nil {
			_ = os.Remove(path)
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(chunks) {
			_ = os.Remove(path)
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
		if err := s.index.Insert(ctx, chunks); err != nil {
			_ = os.Remove(path)
			return fmt.Errorf("insert chunks: %w", err)
		}
	}

	s.entries[name] = docID
	if err := s.meta.Save(s.entries); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}

	s.logger.Info("DocStore", "Document indexed", map[string]interface{}{
		"filename":    name,
		"document_id": docID,
		"pages":       len(pages),
		"chunks":      len(chunks),
	})
	return nil
}

// List returns indexed filenames, sorted. It never touches the vector index.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) HasDocuments() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) > 0
}

// Delete removes the document's chunks, its stored file and its metadata entry.
// It reports false when the filename was never indexed.
//
// The index delete and the metadata save are not atomic; a crash in between
// leaves the two out of step.
func (s *Store) Delete(ctx context.Context, filename string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filename = normalizeName(filename)
	if _, ok := s.entries[filename]; !ok {
		return false, nil
	}

	removed, err := s.index.DeleteBySource(ctx, filename)
	if err != nil {
		return false, fmt.Errorf("delete chunks: %w", err)
	}

	if err := os.Remove(filepath.Join(s.docsDir, filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("DocStore", "Failed to remove stored document", map[string]interface{}{"filename": filename, "error": err.Error()})
	}

	delete(s.entries, filename)
	if err := s.meta.Save(s.entries); err != nil {
		return false, fmt.Errorf("save metadata: %w", err)
	}

	s.logger.Info("DocStore", "Document deleted", map[string]interface{}{"filename": filename, "chunks": removed})
	return true, nil
}

// Contains reports whether the index holds any chunk for filename.
func (s *Store) Contains(ctx context.Context, filename string) (bool, error) {
	n, err := s.index.CountBySource(ctx, normalizeName(filename))
	return n > 0, err
}

// Search embeds query and returns up to k hits scoring at least the configured minimum.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	emb, err := s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := s.index.Search(ctx, emb.Embedding.Values, k)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(scored))
	for _, c := range scored {
		if c.Score < s.minScore {
			continue
		}
		hits = append(hits, Hit{Content: c.Content, Source: c.Source, Page: c.Page, Score: c.Score})
	}
	return hits, nil
}
