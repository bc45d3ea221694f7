package service

import (
	"context"
	"fmt"

	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/docstore"
	"rag-chatbot-be/pkg/events"
)

const documentModule = "DocumentService"

type IDocumentService interface {
	Upload(ctx context.Context, files []docstore.File) (*dto.UploadDocumentsResponse, error)
	List(ctx context.Context) (*dto.ListDocumentsResponse, error)
	Delete(ctx context.Context, filename string) (*dto.StatusResponse, error)
}

// DocumentStore is the part of *docstore.Store the HTTP surface needs.
type DocumentStore interface {
	Add(ctx context.Context, files []docstore.File) (docstore.AddResult, error)
	List() []string
	HasDocuments() bool
	Delete(ctx context.Context, filename string) (bool, error)
}

type documentService struct {
	store     DocumentStore
	publisher events.Publisher
	logger    logger.ILogger
}

func NewDocumentService(store DocumentStore, publisher events.Publisher, log logger.ILogger) IDocumentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &documentService{store: store, publisher: publisher, logger: log}
}

func (ds *documentService) Upload(ctx context.Context, files []docstore.File) (*dto.UploadDocumentsResponse, error) {
	res, err := ds.store.Add(ctx, files)
	// files indexed before a failure stay indexed
	for _, name := range res.Added {
		ds.publisher.PublishDocumentIndexed(ctx, name)
	}
	if err != nil {
		return nil, fmt.Errorf("upload documents: %w", err)
	}

	ds.logger.Info(documentModule, "Documents uploaded", map[string]interface{}{
		"added":   res.Added,
		"skipped": res.Skipped,
	})

	resp := &dto.UploadDocumentsResponse{
		Status:  "success",
		Message: "Documents uploaded successfully",
		Added:   res.Added,
		Skipped: res.Skipped,
	}
	if resp.Added == nil {
		resp.Added = []string{}
	}
	if resp.Skipped == nil {
		resp.Skipped = []string{}
	}
	return resp, nil
}

func (ds *documentService) List(ctx context.Context) (*dto.ListDocumentsResponse, error) {
	docs := ds.store.List()
	if docs == nil {
		docs = []string{}
	}
	return &dto.ListDocumentsResponse{
		Status:       "success",
		Documents:    docs,
		HasDocuments: len(docs) > 0,
	}, nil
}

func (ds *documentService) Delete(ctx context.Context, filename string) (*dto.StatusResponse, error) {
	ok, err := ds.store.Delete(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("delete document %s: %w", filename, err)
	}
	if !ok {
		return &dto.StatusResponse{
			Status:  "error",
			Message: "Document not found or could not be deleted",
		}, nil
	}

	ds.publisher.PublishDocumentDeleted(ctx, filename)
	return &dto.StatusResponse{
		Status:  "success",
		Message: "Document deleted successfully",
	}, nil
}
