package implementation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rag-chatbot-be/internal/repository/contract"
)

type documentMetadataFileRepository struct {
	path string
}

func NewDocumentMetadataFileRepository(path string) (contract.DocumentMetadataRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create metadata dir: %w", err)
	}
	return &documentMetadataFileRepository{path: path}, nil
}

func (r *documentMetadataFileRepository) Load() (map[string]string, error) {
	entries := make(map[string]string)

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(r.path), err)
	}
	return entries, nil
}

func (r *documentMetadataFileRepository) Save(entries map[string]string) error {
	if entries == nil {
		entries = map[string]string{}
	}
	return writeJSONAtomic(r.path, entries)
}
