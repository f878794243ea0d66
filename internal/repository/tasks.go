package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

var ErrNotFound = errors.New("resource not found")

// TasksRepository abstracts task record persistence. Writes are upserts
// keyed by id; each record has a single writer at any point in time, so
// only per-call atomicity is required.
type TasksRepository interface {
	UpsertTask(ctx context.Context, record *domain.TaskRecord) error
	GetTask(ctx context.Context, taskID string) (*domain.TaskRecord, error)
}

// MemoryTasksRepository stores task records in memory for local development
// and tests.
type MemoryTasksRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.TaskRecord
}

func NewMemoryTasksRepository() *MemoryTasksRepository {
	return &MemoryTasksRepository{
		tasks: make(map[string]*domain.TaskRecord),
	}
}

func (r *MemoryTasksRepository) UpsertTask(_ context.Context, record *domain.TaskRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := cloneTask(record)
	if existing, ok := r.tasks[record.ID]; ok {
		// Matches the database behavior: created_at survives upserts.
		clone.CreatedAt = existing.CreatedAt
	}
	r.tasks[record.ID] = clone
	return nil
}

func (r *MemoryTasksRepository) GetTask(_ context.Context, taskID string) (*domain.TaskRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.tasks[taskID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTask(record), nil
}

func cloneTask(record *domain.TaskRecord) *domain.TaskRecord {
	if record == nil {
		return nil
	}
	clone := *record
	if record.Result != nil {
		clone.Result = make(map[string]any, len(record.Result))
		for key, value := range record.Result {
			clone.Result[key] = value
		}
	}
	return &clone
}
