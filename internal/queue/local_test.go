package queue

import (
	"context"
	"testing"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

func TestLocalQueueDeliversInOrder(t *testing.T) {
	q := NewLocalQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, domain.TaskMessage{TaskID: id}); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}

	var got []string
	_ = q.Consume(ctx, func(_ context.Context, message domain.TaskMessage) error {
		got = append(got, message.TaskID)
		if len(got) == 3 {
			cancel()
		}
		return nil
	})

	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected in-order delivery, got %v", got)
	}
}

func TestLocalQueueEnqueueRespectsContext(t *testing.T) {
	q := NewLocalQueue(1)
	ctx := context.Background()

	if err := q.Enqueue(ctx, domain.TaskMessage{TaskID: "fills-buffer"}); err != nil {
		t.Fatalf("expected buffered enqueue to succeed, got %v", err)
	}

	blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(blocked, domain.TaskMessage{TaskID: "overflow"}); err == nil {
		t.Fatalf("expected enqueue on a full queue to fail once the context expires")
	}
}

func TestLocalQueueConsumeStopsOnCancel(t *testing.T) {
	q := NewLocalQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Consume(ctx, func(_ context.Context, _ domain.TaskMessage) error {
		t.Fatalf("handler must not run after cancellation")
		return nil
	}); err == nil {
		t.Fatalf("expected context error from consume")
	}
}
