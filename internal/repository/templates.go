package repository

import (
	"context"
	"sync"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

// TemplatesRepository is the template store consumed by the drafting
// pipeline. Missing templates surface as ErrNotFound.
type TemplatesRepository interface {
	GetTemplate(ctx context.Context, templateID string) (*domain.DocumentTemplate, error)
}

// MemoryTemplatesRepository keeps templates in memory. Used for local
// development and as the seed store in tests.
type MemoryTemplatesRepository struct {
	mu        sync.RWMutex
	templates map[string]*domain.DocumentTemplate
}

func NewMemoryTemplatesRepository() *MemoryTemplatesRepository {
	return &MemoryTemplatesRepository{
		templates: make(map[string]*domain.DocumentTemplate),
	}
}

func (r *MemoryTemplatesRepository) PutTemplate(template *domain.DocumentTemplate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *template
	r.templates[template.ID] = &clone
}

func (r *MemoryTemplatesRepository) GetTemplate(_ context.Context, templateID string) (*domain.DocumentTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	template, ok := r.templates[templateID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *template
	return &clone, nil
}
