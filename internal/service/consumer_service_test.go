package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/events"
)

type recordingForwarder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *recordingForwarder) Publish(ctx context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *recordingForwarder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestConsumerService_AuditsAndForwards(t *testing.T) {
	bus := events.NewBus(logger.NewNopLogger())
	defer bus.Close()

	core, audit := observer.New(zapcore.InfoLevel)
	fwd := &recordingForwarder{err: errors.New("nats down")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumerService(bus, events.DefaultTopic, fwd, logger.NewFromZap(zap.New(core)), logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	pub := events.NewBusPublisher(bus, events.DefaultTopic, logger.NewNopLogger())
	pub.PublishDocumentIndexed(ctx, "report.pdf")
	pub.PublishDocumentDeleted(ctx, "report.pdf")

	require.Eventually(t, func() bool { return fwd.count() == 2 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return audit.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, audit.FilterMessage(events.TypeDocumentIndexed).Len())
	assert.Equal(t, 1, audit.FilterMessage(events.TypeDocumentDeleted).Len())
}
