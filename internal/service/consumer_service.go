package service

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/events"
)

const consumerModule = "EventConsumer"

// EventForwarder ships events off the process, e.g. *nats.Publisher.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process bus: every event goes to the audit log
// and, when configured, to the forwarder.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	forwarder EventForwarder
	audit     logger.ILogger
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	forwarder EventForwarder,
	audit logger.ILogger,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		forwarder: forwarder,
		audit:     audit,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// acked unconditionally; forward failures are only logged
	defer msg.Ack()

	evt, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error(consumerModule, "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		return
	}

	cs.audit.Info(consumerModule, evt.Type, map[string]interface{}{
		"event_id":    evt.ID,
		"occurred_at": evt.OccurredAt,
		"payload":     evt.Data,
	})

	if cs.forwarder == nil {
		return
	}
	if err := cs.forwarder.Publish(ctx, evt); err != nil {
		cs.logger.Warn(consumerModule, "Failed to forward event", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
	}
}
