// Package audit records who did what. Writes are best-effort: an audit
// failure is logged and never propagates to the operation it describes.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/repository"
	"github.com/google/uuid"
)

type Service struct {
	repo   repository.AuditRepository
	logger *log.Logger
}

func NewService(repo repository.AuditRepository, logger *log.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// LogEvent records an audit event. Safe to call on a nil service.
func (s *Service) LogEvent(ctx context.Context, userID, action, resourceType, resourceID string, details map[string]any) {
	if s == nil || s.repo == nil {
		return
	}

	event := &domain.AuditEvent{
		ID:           uuid.NewString(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.InsertAuditEvent(ctx, event); err != nil && s.logger != nil {
		s.logger.Printf("audit write failed action=%s resource=%s/%s: %v", action, resourceType, resourceID, err)
	}
}

// List returns audit events matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	if s == nil || s.repo == nil {
		return nil, nil
	}
	return s.repo.ListAuditEvents(ctx, filter)
}
