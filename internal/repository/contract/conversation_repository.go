package contract

import (
	"context"
	"time"

	"rag-chatbot-be/internal/entity"
)

// ConversationRepository stores one turn list per session key.
type ConversationRepository interface {
	// Load returns an empty slice when the session does not exist.
	Load(ctx context.Context, key string) ([]entity.Turn, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Save overwrites the whole turn list.
	Save(ctx context.Context, key string, turns []entity.Turn) error
	Create(ctx context.Context, key string) error
	// CreateNext allocates the next DD-MM-YYYY-N key for now and creates it empty.
	CreateNext(ctx context.Context, now time.Time) (string, error)
	// Clear and Delete are no-ops for unknown sessions.
	Clear(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
	// List returns keys, most recently modified first.
	List(ctx context.Context) ([]string, error)
}
