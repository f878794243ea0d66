package audit

import (
	"context"
	"testing"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/repository"
)

func TestLogEventAssignsIDAndTimestamp(t *testing.T) {
	repo := repository.NewMemoryAuditRepository()
	service := NewService(repo, nil)
	ctx := context.Background()

	service.LogEvent(ctx, "user-7", "task.enqueued", "ai_task", "task-1", map[string]any{"filename": "contract.pdf"})

	events, err := service.List(ctx, domain.AuditFilter{})
	if err != nil {
		t.Fatalf("expected events, got err=%v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	event := events[0]
	if event.ID == "" {
		t.Fatalf("expected generated event id")
	}
	if event.CreatedAt.IsZero() {
		t.Fatalf("expected created_at stamped")
	}
	if event.Action != "task.enqueued" || event.ResourceID != "task-1" {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestListFiltersByUserAndAction(t *testing.T) {
	repo := repository.NewMemoryAuditRepository()
	service := NewService(repo, nil)
	ctx := context.Background()

	service.LogEvent(ctx, "user-a", "task.enqueued", "ai_task", "task-1", nil)
	service.LogEvent(ctx, "user-b", "task.enqueued", "ai_task", "task-2", nil)
	service.LogEvent(ctx, "user-a", "document.drafted", "generated_document", "doc-1", nil)

	byUser, err := service.List(ctx, domain.AuditFilter{UserID: "user-a"})
	if err != nil {
		t.Fatalf("expected events, got err=%v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("expected two events for user-a, got %d", len(byUser))
	}

	byAction, err := service.List(ctx, domain.AuditFilter{UserID: "user-a", Action: "document.drafted"})
	if err != nil {
		t.Fatalf("expected events, got err=%v", err)
	}
	if len(byAction) != 1 || byAction[0].ResourceID != "doc-1" {
		t.Fatalf("unexpected filtered events %+v", byAction)
	}
}

func TestNilServiceIsSafe(t *testing.T) {
	var service *Service
	service.LogEvent(context.Background(), "user", "action", "type", "id", nil)

	events, err := service.List(context.Background(), domain.AuditFilter{})
	if err != nil || events != nil {
		t.Fatalf("expected nil service to no-op, got %v, %v", events, err)
	}
}
