// Package status implements the task progress store polled by clients.
//
// Writes are fail-soft: a task id is always synthesized and returned even
// when persistence is down, so callers are never blocked from obtaining an
// id by a storage outage. Lookups distinguish "unknown id" from "the store
// itself failed" so the HTTP layer can map them to 404 vs 5xx.
package status

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/repository"
	"github.com/google/uuid"
)

var (
	// ErrNotFound means the task id has never been recorded.
	ErrNotFound = errors.New("task not found")
	// ErrLookup means the lookup itself failed; the task may exist.
	ErrLookup = errors.New("task lookup failed")
)

// Write is one status transition. Message is routed to the record's
// details field, or to error_message when Status is error; the other
// field is cleared on every write.
type Write struct {
	TaskID   string
	Status   domain.TaskStatus
	Message  string
	Result   map[string]any
	CrewType domain.CrewType
	UserID   string
}

type Store struct {
	repo   repository.TasksRepository
	logger *log.Logger
}

func NewStore(repo repository.TasksRepository, logger *log.Logger) *Store {
	return &Store{repo: repo, logger: logger}
}

// CreateOrUpdate upserts a task record and returns its id, generating a
// fresh one when the write carries none. Persistence failures are logged
// and swallowed; the id is returned regardless.
func (s *Store) CreateOrUpdate(ctx context.Context, write Write) string {
	taskID := write.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}

	now := time.Now().UTC()
	record := &domain.TaskRecord{
		ID:          taskID,
		Status:      write.Status,
		Result:      write.Result,
		CrewType:    write.CrewType,
		UserID:      write.UserID,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if write.Status == domain.TaskStatusError {
		record.ErrorMessage = write.Message
	} else {
		record.Details = write.Message
	}

	if err := s.repo.UpsertTask(ctx, record); err != nil {
		s.logf("status write failed task_id=%s status=%s: %v", taskID, write.Status, err)
	}
	return taskID
}

// Get returns the task record for an id. Unknown ids yield ErrNotFound;
// repository failures yield an error wrapping ErrLookup.
func (s *Store) Get(ctx context.Context, taskID string) (*domain.TaskRecord, error) {
	record, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logf("status lookup failed task_id=%s: %v", taskID, err)
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	return record, nil
}

func (s *Store) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
