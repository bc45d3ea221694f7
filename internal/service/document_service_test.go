package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/docstore"
)

type recordingPublisher struct {
	indexed []string
	deleted []string
}

func (p *recordingPublisher) PublishChatCompleted(context.Context, string, []string, int, int) {}
func (p *recordingPublisher) PublishChatLifecycle(context.Context, string, string) {}
func (p *recordingPublisher) PublishDocumentIndexed(_ context.Context, filename string) {
	p.indexed = append(p.indexed, filename)
}
func (p *recordingPublisher) PublishDocumentDeleted(_ context.Context, filename string) {
	p.deleted = append(p.deleted, filename)
}

func TestDocumentService_UploadListDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "[]")
	pub := &recordingPublisher{}
	svc := NewDocumentService(f.store, pub, logger.NewNopLogger())

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{}, list.Documents)
	assert.False(t, list.HasDocuments)

	up, err := svc.Upload(ctx, []docstore.File{
		{Name: "project.txt", Content: []byte("The project started in 2019.")},
		{Name: "image.png", Content: []byte{0x89, 0x50}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"project.txt"}, up.Added)
	assert.Equal(t, []string{"image.png"}, up.Skipped)
	assert.Equal(t, []string{"project.txt"}, pub.indexed)

	again, err := svc.Upload(ctx, []docstore.File{{Name: "project.txt", Content: []byte("changed")}})
	require.NoError(t, err)
	assert.Equal(t, []string{}, again.Added)
	assert.Equal(t, []string{"project.txt"}, again.Skipped)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"project.txt"}, list.Documents)
	assert.True(t, list.HasDocuments)

	del, err := svc.Delete(ctx, "project.txt")
	require.NoError(t, err)
	assert.Equal(t, "success", del.Status)
	assert.Equal(t, []string{"project.txt"}, pub.deleted)

	contains, err := f.store.Contains(ctx, "project.txt")
	require.NoError(t, err)
	assert.False(t, contains)

	del, err = svc.Delete(ctx, "project.txt")
	require.NoError(t, err)
	assert.Equal(t, "error", del.Status)
	assert.Len(t, pub.deleted, 1)
}
