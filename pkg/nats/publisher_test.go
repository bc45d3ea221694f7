package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rag-chatbot-be/pkg/events"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "rag.chat_completed", Subject(events.TypeChatCompleted))
	assert.Equal(t, "rag.document_deleted", Subject(events.TypeDocumentDeleted))
}
