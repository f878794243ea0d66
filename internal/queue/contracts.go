package queue

import (
	"context"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

// Producer schedules a pipeline run independently of the request cycle.
type Producer interface {
	Enqueue(ctx context.Context, message domain.TaskMessage) error
}

// Consumer receives scheduled runs and executes the handler for each.
// Handlers own all failure reporting; a handler error only signals that
// the message could not be dispatched at all.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, domain.TaskMessage) error) error
}
