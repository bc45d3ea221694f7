package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"rag-chatbot-be/internal/pkg/logger"
)

// DefaultTopic carries every event on the in-process bus.
const DefaultTopic = "rag.events"

// Publisher abstracts event publishing for chat and document operations.
// Publishing is best effort: failures are logged, never returned to the caller.
type Publisher interface {
	PublishChatCompleted(ctx context.Context, sessionKey string, tools []string, steps, failures int)
	PublishChatLifecycle(ctx context.Context, eventType, sessionKey string)
	PublishDocumentIndexed(ctx context.Context, filename string)
	PublishDocumentDeleted(ctx context.Context, filename string)
}

// BusPublisher implements Publisher on a watermill gochannel.
type BusPublisher struct {
	pubSub *gochannel.GoChannel
	topic  string
	logger logger.ILogger
}

func NewBus(log logger.ILogger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		NewWatermillLogger(log),
	)
}

func NewBusPublisher(pubSub *gochannel.GoChannel, topic string, log logger.ILogger) *BusPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &BusPublisher{pubSub: pubSub, topic: topic, logger: log}
}

func (p *BusPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := Marshal(evt)
	if err != nil {
		return err
	}

	id := ""
	if b, ok := evt.(BaseEvent); ok {
		id = b.ID
	}
	msg := message.NewMessage(id, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", evt.EventType())

	if err := p.pubSub.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", evt.EventType(), err)
	}
	return nil
}

func (p *BusPublisher) publish(ctx context.Context, evt BaseEvent) {
	if err := p.Publish(ctx, evt); err != nil {
		p.logger.Error("Events", "Failed to publish event", map[string]interface{}{
			"type":  evt.Type,
			"error": err,
		})
	}
}

func (p *BusPublisher) PublishChatCompleted(ctx context.Context, sessionKey string, tools []string, steps, failures int) {
	p.publish(ctx, New(TypeChatCompleted, map[string]interface{}{
		"session_key": sessionKey,
		"tools":       tools,
		"steps":       steps,
		"failures":    failures,
	}))
}

func (p *BusPublisher) PublishChatLifecycle(ctx context.Context, eventType, sessionKey string) {
	p.publish(ctx, New(eventType, map[string]interface{}{
		"session_key": sessionKey,
	}))
}

func (p *BusPublisher) PublishDocumentIndexed(ctx context.Context, filename string) {
	p.publish(ctx, New(TypeDocumentIndexed, map[string]interface{}{
		"filename": filename,
	}))
}

func (p *BusPublisher) PublishDocumentDeleted(ctx context.Context, filename string) {
	p.publish(ctx, New(TypeDocumentDeleted, map[string]interface{}{
		"filename": filename,
	}))
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishChatCompleted(context.Context, string, []string, int, int) {}
func (NopPublisher) PublishChatLifecycle(context.Context, string, string) {}
func (NopPublisher) PublishDocumentIndexed(context.Context, string) {}
func (NopPublisher) PublishDocumentDeleted(context.Context, string) {}
