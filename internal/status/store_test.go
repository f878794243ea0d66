package status

import (
	"context"
	"errors"
	"testing"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/repository"
)

type failingTasksRepository struct {
	upsertErr error
	getErr    error
}

func (r *failingTasksRepository) UpsertTask(_ context.Context, _ *domain.TaskRecord) error {
	return r.upsertErr
}

func (r *failingTasksRepository) GetTask(_ context.Context, _ string) (*domain.TaskRecord, error) {
	return nil, r.getErr
}

func TestCreateOrUpdateGeneratesTaskID(t *testing.T) {
	store := NewStore(repository.NewMemoryTasksRepository(), nil)

	taskID := store.CreateOrUpdate(context.Background(), Write{
		Status:  domain.TaskStatusQueued,
		Message: "Queued for AI document processing: contract.pdf",
	})
	if taskID == "" {
		t.Fatalf("expected a generated task id")
	}

	record, err := store.Get(context.Background(), taskID)
	if err != nil {
		t.Fatalf("expected record, got err=%v", err)
	}
	if record.Status != domain.TaskStatusQueued {
		t.Fatalf("expected queued status, got %q", record.Status)
	}
	if record.Details != "Queued for AI document processing: contract.pdf" {
		t.Fatalf("expected message routed to details, got %q", record.Details)
	}
}

func TestCreateOrUpdateRoutesMessageByStatus(t *testing.T) {
	store := NewStore(repository.NewMemoryTasksRepository(), nil)
	ctx := context.Background()

	taskID := store.CreateOrUpdate(ctx, Write{
		Status:  domain.TaskStatusInProgress,
		Message: "AI processing started for contract.pdf",
	})

	store.CreateOrUpdate(ctx, Write{
		TaskID:  taskID,
		Status:  domain.TaskStatusError,
		Message: "AI processing failed for contract.pdf",
	})

	record, err := store.Get(ctx, taskID)
	if err != nil {
		t.Fatalf("expected record, got err=%v", err)
	}
	if record.ErrorMessage != "AI processing failed for contract.pdf" {
		t.Fatalf("expected message routed to error_message, got %q", record.ErrorMessage)
	}
	if record.Details != "" {
		t.Fatalf("expected details cleared on error write, got %q", record.Details)
	}
}

func TestCreateOrUpdatePreservesCreatedAt(t *testing.T) {
	store := NewStore(repository.NewMemoryTasksRepository(), nil)
	ctx := context.Background()

	taskID := store.CreateOrUpdate(ctx, Write{Status: domain.TaskStatusQueued, Message: "queued"})
	first, err := store.Get(ctx, taskID)
	if err != nil {
		t.Fatalf("expected record, got err=%v", err)
	}

	store.CreateOrUpdate(ctx, Write{TaskID: taskID, Status: domain.TaskStatusCompleted, Message: "done"})
	second, err := store.Get(ctx, taskID)
	if err != nil {
		t.Fatalf("expected record, got err=%v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected created_at to survive upserts, got %v then %v", first.CreatedAt, second.CreatedAt)
	}
	if second.LastUpdated.Before(first.LastUpdated) {
		t.Fatalf("expected last_updated to move forward")
	}
}

func TestCreateOrUpdateReturnsIDWhenPersistenceFails(t *testing.T) {
	store := NewStore(&failingTasksRepository{upsertErr: errors.New("db down")}, nil)

	taskID := store.CreateOrUpdate(context.Background(), Write{
		Status:  domain.TaskStatusQueued,
		Message: "queued",
	})
	if taskID == "" {
		t.Fatalf("expected task id even when persistence fails")
	}
}

func TestGetDistinguishesNotFoundFromLookupFailure(t *testing.T) {
	store := NewStore(repository.NewMemoryTasksRepository(), nil)
	if _, err := store.Get(context.Background(), "unknown-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	broken := NewStore(&failingTasksRepository{getErr: errors.New("connection refused")}, nil)
	_, err := broken.Get(context.Background(), "any-id")
	if !errors.Is(err, ErrLookup) {
		t.Fatalf("expected ErrLookup, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("lookup failure must not read as not-found")
	}
}
