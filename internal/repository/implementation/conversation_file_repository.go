package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/repository/contract"
)

var ErrInvalidSessionKey = errors.New("invalid session key")

const sessionKeyDateLayout = "02-01-2006"

type conversationFileRepository struct {
	dir string
	// guards key allocation in CreateNext
	mu sync.Mutex
}

func NewConversationFileRepository(dir string) (contract.ConversationRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}
	return &conversationFileRepository{dir: dir}, nil
}

func (r *conversationFileRepository) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionKey, key)
	}
	return filepath.Join(r.dir, key+".json"), nil
}

func (r *conversationFileRepository) Load(ctx context.Context, key string) ([]entity.Turn, error) {
	p, err := r.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return []entity.Turn{}, nil
	}
	if err != nil {
		return nil, err
	}

	turns := []entity.Turn{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return turns, nil
	}
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", key, err)
	}
	return turns, nil
}

func (r *conversationFileRepository) Exists(ctx context.Context, key string) (bool, error) {
	p, err := r.path(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (r *conversationFileRepository) Save(ctx context.Context, key string, turns []entity.Turn) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}
	// images are stored as absent, never as []
	out := make([]entity.Turn, len(turns))
	for i, t := range turns {
		if len(t.Images) == 0 {
			t.Images = nil
		}
		out[i] = t
	}
	return writeJSONAtomic(p, out)
}

func (r *conversationFileRepository) Create(ctx context.Context, key string) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString("[]")
	return err
}

func (r *conversationFileRepository) CreateNext(ctx context.Context, now time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := now.Format(sessionKeyDateLayout) + "-"
	keys, err := r.keys()
	if err != nil {
		return "", err
	}

	maxN := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(k, prefix)); err == nil && n > maxN {
			maxN = n
		}
	}

	key := prefix + strconv.Itoa(maxN+1)
	if err := r.Create(ctx, key); err != nil {
		return "", err
	}
	return key, nil
}

func (r *conversationFileRepository) Clear(ctx context.Context, key string) error {
	ok, err := r.Exists(ctx, key)
	if err != nil || !ok {
		return err
	}
	return r.Save(ctx, key, nil)
}

func (r *conversationFileRepository) Delete(ctx context.Context, key string) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (r *conversationFileRepository) keys() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys, nil
}

func (r *conversationFileRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}

	type item struct {
		key   string
		mtime time.Time
	}
	items := make([]item, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed while listing
		}
		items = append(items, item{key: strings.TrimSuffix(name, ".json"), mtime: info.ModTime()})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].mtime.Equal(items[j].mtime) {
			return items[i].key > items[j].key
		}
		return items[i].mtime.After(items[j].mtime)
	})

	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.key
	}
	return keys, nil
}
