package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/fetcher"
	"github.com/giulianni/lawfirm-ai-back/internal/pipeline"
	"github.com/giulianni/lawfirm-ai-back/internal/queue"
	"github.com/giulianni/lawfirm-ai-back/internal/repository"
	"github.com/giulianni/lawfirm-ai-back/internal/stage"
	"github.com/giulianni/lawfirm-ai-back/internal/status"
)

func newProcessorHarness() (*Processor, *status.Store, *queue.LocalQueue) {
	store := status.NewStore(repository.NewMemoryTasksRepository(), nil)
	parsing := pipeline.NewParsingPipeline(store, stage.NewMockExecutor(), fetcher.New(fetcher.Config{}), nil)
	drafting := pipeline.NewDraftingPipeline(pipeline.DraftingDependencies{
		Store:    store,
		Executor: stage.NewMockExecutor(),
	})
	local := queue.NewLocalQueue(8)
	return NewProcessor(local, store, parsing, drafting, nil), store, local
}

func TestProcessorRunsParsingPipeline(t *testing.T) {
	processor, store, local := newProcessorHarness()
	ctx, cancel := context.WithCancel(context.Background())

	taskID := store.CreateOrUpdate(ctx, status.Write{Status: domain.TaskStatusQueued, Message: "queued"})
	if err := local.Enqueue(ctx, domain.TaskMessage{
		TaskID: taskID,
		Crew:   domain.CrewDocumentParser,
		Parse: &domain.ParseRequest{
			Location:        domain.FileLocation{Bucket: "documents", Path: "case-1/memo.txt", Filename: "memo.txt"},
			PreSuppliedText: "memo body",
		},
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	done := make(chan struct{})
	go func() {
		processor.Start(ctx)
		close(done)
	}()

	waitForTerminal(t, store, taskID)
	cancel()
	<-done

	record, err := store.Get(context.Background(), taskID)
	if err != nil {
		t.Fatalf("expected record, got err=%v", err)
	}
	if record.Status != domain.TaskStatusCompleted {
		t.Fatalf("expected completed status, got %q", record.Status)
	}
}

func TestProcessorTerminatesMalformedMessage(t *testing.T) {
	processor, store, local := newProcessorHarness()
	ctx, cancel := context.WithCancel(context.Background())

	taskID := store.CreateOrUpdate(ctx, status.Write{Status: domain.TaskStatusQueued, Message: "queued"})
	if err := local.Enqueue(ctx, domain.TaskMessage{
		TaskID: taskID,
		Crew:   domain.CrewDocumentParser,
		// No payload at all: the worker cannot route this.
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	done := make(chan struct{})
	go func() {
		processor.Start(ctx)
		close(done)
	}()

	waitForTerminal(t, store, taskID)
	cancel()
	<-done

	record, err := store.Get(context.Background(), taskID)
	if err != nil {
		t.Fatalf("expected record, got err=%v", err)
	}
	if record.Status != domain.TaskStatusError {
		t.Fatalf("expected error status, got %q", record.Status)
	}
	if !strings.Contains(record.ErrorMessage, "no matching payload") {
		t.Fatalf("unexpected error message %q", record.ErrorMessage)
	}
}

func waitForTerminal(t *testing.T, store *status.Store, taskID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		record, err := store.Get(context.Background(), taskID)
		if err == nil && record.Status.Terminal() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached a terminal status", taskID)
}
