package queue

import (
	"context"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

// LocalQueue is an in-process queue used when Redis is not configured.
// Single attempt per message: pipelines convert their own failures into
// terminal status writes, so the queue never re-delivers.
type LocalQueue struct {
	ch chan domain.TaskMessage
}

func NewLocalQueue(bufferSize int) *LocalQueue {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &LocalQueue{
		ch: make(chan domain.TaskMessage, bufferSize),
	}
}

func (q *LocalQueue) Enqueue(ctx context.Context, message domain.TaskMessage) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- message:
		return nil
	}
}

func (q *LocalQueue) Consume(ctx context.Context, handler func(context.Context, domain.TaskMessage) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case message := <-q.ch:
			_ = handler(ctx, message)
		}
	}
}
