package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	InsertAuditEvent(ctx context.Context, event *domain.AuditEvent) error
	ListAuditEvents(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error)
}

type MemoryAuditRepository struct {
	mu     sync.RWMutex
	events []domain.AuditEvent
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{
		events: make([]domain.AuditEvent, 0),
	}
}

func (r *MemoryAuditRepository) InsertAuditEvent(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, *event)
	return nil
}

func (r *MemoryAuditRepository) ListAuditEvents(_ context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.AuditEvent, 0)
	for _, event := range r.events {
		if filter.UserID != "" && event.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && event.Action != filter.Action {
			continue
		}
		if filter.ResourceType != "" && event.ResourceType != filter.ResourceType {
			continue
		}
		if filter.From != nil && event.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && event.CreatedAt.After(*filter.To) {
			continue
		}
		items = append(items, event)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}
