package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeChatCompleted   = "CHAT_COMPLETED"
	TypeChatCreated     = "CHAT_CREATED"
	TypeChatCleared     = "CHAT_CLEARED"
	TypeChatDeleted     = "CHAT_DELETED"
	TypeDocumentIndexed = "DOCUMENT_INDEXED"
	TypeDocumentDeleted = "DOCUMENT_DELETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_COMPLETED").
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

type BaseEvent struct {
	ID         string
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// New stamps an event with a fresh id and the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// envelope is the wire form shared by the in-process bus and NATS.
type envelope struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

func Marshal(e Event) ([]byte, error) {
	env := envelope{
		Type:       e.EventType(),
		OccurredAt: e.Timestamp(),
		Payload:    e.Payload(),
	}
	if b, ok := e.(BaseEvent); ok {
		env.ID = b.ID
	}
	return json.Marshal(env)
}

func Unmarshal(data []byte) (BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if env.Type == "" {
		return BaseEvent{}, fmt.Errorf("decode event: missing type")
	}
	return BaseEvent{
		ID:         env.ID,
		Type:       env.Type,
		Data:       env.Payload,
		OccurredAt: env.OccurredAt,
	}, nil
}
