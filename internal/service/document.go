package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_service.go -package=mocks manualrag/internal/service DocumentService

import (
	"context"
	"errors"
	"strings"

	"manualrag/internal/apperr"
	"manualrag/internal/contextutil"
	"manualrag/internal/storage"
)

// CreateDocumentRequest holds the fields of a new document.
type CreateDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
}

// DocumentService provides document CRUD.
type DocumentService interface {
	Create(ctx context.Context, req CreateDocumentRequest) (string, error)
	Get(ctx context.Context, id string) (*storage.Document, error)
	Update(ctx context.Context, id string, patch storage.DocumentPatch) error
	Delete(ctx context.Context, id string) error
}

type documentService struct {
	store storage.DocumentStore
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store storage.DocumentStore) DocumentService {
	return &documentService{store: store}
}

func (s *documentService) Create(ctx context.Context, req CreateDocumentRequest) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Title) == "" {
		return "", &apperr.ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if strings.TrimSpace(req.Content) == "" {
		return "", &apperr.ValidationError{Field: "content", Message: "cannot be empty"}
	}

	doc := &storage.Document{Title: req.Title, Content: req.Content, Author: req.Author}
	if err := s.store.Create(ctx, doc); err != nil {
		logger.ErrorContext(ctx, "failed to create document", "error", err)
		return "", apperr.WrapError(err, "failed to create document")
	}

	logger.InfoContext(ctx, "document created", "document_id", doc.ID)
	return doc.ID, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*storage.Document, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError("get document", err)
	}
	return doc, nil
}

// Update applies a partial update. Title and content may change but not become empty.
func (s *documentService) Update(ctx context.Context, id string, patch storage.DocumentPatch) error {
	if patch.Empty() {
		return &apperr.ValidationError{Field: "body", Message: "no fields to update"}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return &apperr.ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return &apperr.ValidationError{Field: "content", Message: "cannot be empty"}
	}

	if err := s.store.Update(ctx, id, patch); err != nil {
		return storeError("update document", err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "document updated", "document_id", id)
	return nil
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return storeError("delete document", err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "document deleted", "document_id", id)
	return nil
}

func storeError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(op, err)
	}
	return apperr.WrapError(err, "failed to "+op)
}
