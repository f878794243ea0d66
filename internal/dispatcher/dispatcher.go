// Package dispatcher accepts work requests, creates the task record
// synchronously and schedules the pipeline run. The caller always leaves
// with a valid task id before any expensive work begins.
package dispatcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/audit"
	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/queue"
	"github.com/giulianni/lawfirm-ai-back/internal/status"
)

// Ack is the synchronous response to an enqueue call.
type Ack struct {
	TaskID string            `json:"task_id"`
	Status domain.TaskStatus `json:"status"`
}

type Dispatcher struct {
	store    *status.Store
	producer queue.Producer
	auditor  *audit.Service
	logger   *log.Logger
}

func New(store *status.Store, producer queue.Producer, auditor *audit.Service, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		producer: producer,
		auditor:  auditor,
		logger:   logger,
	}
}

// EnqueueParse schedules a document-parser run.
func (d *Dispatcher) EnqueueParse(ctx context.Context, request domain.ParseRequest) (Ack, error) {
	parse := request
	return d.enqueue(ctx, domain.CrewDocumentParser, request.UserID,
		"Queued for AI document processing: "+request.Location.Filename,
		domain.TaskMessage{Crew: domain.CrewDocumentParser, Parse: &parse},
		map[string]any{"filename": request.Location.Filename, "bucket": request.Location.Bucket})
}

// EnqueueDraft schedules a document-drafter run.
func (d *Dispatcher) EnqueueDraft(ctx context.Context, request domain.DraftRequest) (Ack, error) {
	draft := request
	return d.enqueue(ctx, domain.CrewDocumentDrafter, request.UserID,
		fmt.Sprintf("Queued for document drafting (template %s, case %s)", request.TemplateID, request.CaseID),
		domain.TaskMessage{Crew: domain.CrewDocumentDrafter, Draft: &draft},
		map[string]any{"template_id": request.TemplateID, "case_id": request.CaseID})
}

func (d *Dispatcher) enqueue(ctx context.Context, crew domain.CrewType, userID, details string, message domain.TaskMessage, auditDetails map[string]any) (Ack, error) {
	taskID := d.store.CreateOrUpdate(ctx, status.Write{
		Status:   domain.TaskStatusQueued,
		Message:  details,
		CrewType: crew,
		UserID:   userID,
	})

	message.TaskID = taskID
	message.RequestedAt = time.Now().UTC()

	if err := d.producer.Enqueue(ctx, message); err != nil {
		// Never leave a record stuck at queued with no owner: the
		// pipeline will not run, so the dispatcher writes the terminal
		// state itself.
		d.logf("enqueue failed task_id=%s crew=%s: %v", taskID, crew, err)
		d.store.CreateOrUpdate(ctx, status.Write{
			TaskID:   taskID,
			Status:   domain.TaskStatusError,
			Message:  fmt.Sprintf("Failed to enqueue task for processing: %v", err),
			CrewType: crew,
			UserID:   userID,
		})
		return Ack{TaskID: taskID, Status: domain.TaskStatusError}, fmt.Errorf("enqueue task: %w", err)
	}

	d.auditor.LogEvent(ctx, userID, "task.enqueued", "ai_task", taskID, auditDetails)
	return Ack{TaskID: taskID, Status: domain.TaskStatusQueued}, nil
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}
