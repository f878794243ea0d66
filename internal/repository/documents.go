package repository

import (
	"context"
	"sync"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

// DocumentsRepository records metadata for drafted artifacts. Insert
// returns the stored row id; an empty id is treated as a failed insert by
// the drafting pipeline.
type DocumentsRepository interface {
	InsertDocument(ctx context.Context, document *domain.GeneratedDocument) (string, error)
	GetDocument(ctx context.Context, documentID string) (*domain.GeneratedDocument, error)
	ListCaseDocuments(ctx context.Context, caseID string) ([]domain.GeneratedDocument, error)
}

type MemoryDocumentsRepository struct {
	mu        sync.RWMutex
	documents map[string]*domain.GeneratedDocument
}

func NewMemoryDocumentsRepository() *MemoryDocumentsRepository {
	return &MemoryDocumentsRepository{
		documents: make(map[string]*domain.GeneratedDocument),
	}
}

func (r *MemoryDocumentsRepository) InsertDocument(_ context.Context, document *domain.GeneratedDocument) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *document
	r.documents[document.ID] = &clone
	return document.ID, nil
}

func (r *MemoryDocumentsRepository) GetDocument(_ context.Context, documentID string) (*domain.GeneratedDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	document, ok := r.documents[documentID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *document
	return &clone, nil
}

func (r *MemoryDocumentsRepository) ListCaseDocuments(_ context.Context, caseID string) ([]domain.GeneratedDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.GeneratedDocument, 0)
	for _, document := range r.documents {
		if document.CaseID == caseID {
			items = append(items, *document)
		}
	}
	return items, nil
}
