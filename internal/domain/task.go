package domain

import "time"

// CrewType tags which pipeline owns a task record. It is used for
// filtering and observability, never for dispatch decisions.
type CrewType string

const (
	CrewDocumentParser  CrewType = "document_parser"
	CrewDocumentDrafter CrewType = "document_drafter"
)

type TaskStatus string

const (
	TaskStatusPending             TaskStatus = "pending"
	TaskStatusQueued              TaskStatus = "queued"
	TaskStatusInProgress          TaskStatus = "in_progress"
	TaskStatusCompleted           TaskStatus = "completed"
	TaskStatusCompletedWithIssues TaskStatus = "completed_with_issues"
	TaskStatusError               TaskStatus = "error"
)

// Terminal reports whether a status ends the task's lifecycle.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusCompletedWithIssues, TaskStatusError:
		return true
	}
	return false
}

// TaskRecord is the durable unit of observable progress, polled by clients.
// Exactly one of Details and ErrorMessage is populated per write.
type TaskRecord struct {
	ID           string
	Status       TaskStatus
	Details      string
	ErrorMessage string
	Result       map[string]any
	CrewType     CrewType
	UserID       string
	CreatedAt    time.Time
	LastUpdated  time.Time
}

// TaskMessage is the transport format handed to queue backends. The task
// record already exists (status=queued) by the time a message is produced;
// the consuming pipeline is the record's only writer from then on.
type TaskMessage struct {
	TaskID      string        `json:"task_id"`
	Crew        CrewType      `json:"crew_type"`
	Parse       *ParseRequest `json:"parse,omitempty"`
	Draft       *DraftRequest `json:"draft,omitempty"`
	RequestedAt time.Time     `json:"requested_at"`
}
