package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/pipeline"
	"github.com/giulianni/lawfirm-ai-back/internal/queue"
	"github.com/giulianni/lawfirm-ai-back/internal/status"
)

// Processor consumes scheduled task messages and routes each one to the
// pipeline that owns its crew type. From the moment a message is picked
// up, that pipeline run is the task record's only writer.
type Processor struct {
	consumer queue.Consumer
	store    *status.Store
	parsing  *pipeline.ParsingPipeline
	drafting *pipeline.DraftingPipeline
	logger   *log.Logger
}

func NewProcessor(
	consumer queue.Consumer,
	store *status.Store,
	parsing *pipeline.ParsingPipeline,
	drafting *pipeline.DraftingPipeline,
	logger *log.Logger,
) *Processor {
	return &Processor{
		consumer: consumer,
		store:    store,
		parsing:  parsing,
		drafting: drafting,
		logger:   logger,
	}
}

func (p *Processor) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := p.consumer.Consume(ctx, p.processMessage)
		if err == nil || ctx.Err() != nil {
			return
		}
		p.logf("worker consume loop error: %v", err)

		timer := time.NewTimer(2 * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *Processor) processMessage(ctx context.Context, message domain.TaskMessage) error {
	var run pipeline.RunResult

	switch {
	case message.Crew == domain.CrewDocumentParser && message.Parse != nil:
		run = p.parsing.Run(ctx, message.TaskID, *message.Parse)
	case message.Crew == domain.CrewDocumentDrafter && message.Draft != nil:
		run = p.drafting.Run(ctx, message.TaskID, *message.Draft)
	default:
		// Malformed message: terminate the record so it cannot sit at
		// queued forever.
		p.store.CreateOrUpdate(ctx, status.Write{
			TaskID:   message.TaskID,
			Status:   domain.TaskStatusError,
			Message:  fmt.Sprintf("Task message for crew %q carried no matching payload.", message.Crew),
			CrewType: message.Crew,
		})
		return fmt.Errorf("malformed task message task_id=%s crew=%s", message.TaskID, message.Crew)
	}

	p.logf("task processed crew=%s task_id=%s outcome=%s", message.Crew, run.TaskID, run.Outcome)
	return nil
}

func (p *Processor) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
