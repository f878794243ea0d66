package stage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

func TestMockExtractionEchoesPreSuppliedText(t *testing.T) {
	executor := NewMockExecutor()
	result, err := executor.Run(context.Background(), Spec{
		Kind: KindExtraction,
		Inputs: map[string]string{
			InputFilename:        "contract.pdf",
			InputPreSuppliedText: "This agreement is made between the parties.",
		},
	})
	if err != nil {
		t.Fatalf("expected mock run to succeed, got %v", err)
	}

	var extraction domain.ExtractionResult
	if err := json.Unmarshal([]byte(result.Raw), &extraction); err != nil {
		t.Fatalf("expected JSON extraction output, got %q", result.Raw)
	}
	if extraction.ExtractedText != "This agreement is made between the parties." {
		t.Fatalf("expected pre-supplied text echoed verbatim, got %q", extraction.ExtractedText)
	}
	if extraction.Summary == "" {
		t.Fatalf("expected a summary")
	}
}

func TestMockExtractionInvokesFetchTool(t *testing.T) {
	executor := NewMockExecutor()
	invoked := false
	result, err := executor.Run(context.Background(), Spec{
		Kind:   KindExtraction,
		Inputs: map[string]string{InputFilename: "contract.pdf"},
		Tools: []Tool{{
			Name: "fetch_document_text",
			Run: func(_ context.Context) string {
				invoked = true
				return "fetched document body"
			},
		}},
	})
	if err != nil {
		t.Fatalf("expected mock run to succeed, got %v", err)
	}
	if !invoked {
		t.Fatalf("expected the fetch tool to be invoked")
	}

	var extraction domain.ExtractionResult
	if err := json.Unmarshal([]byte(result.Raw), &extraction); err != nil {
		t.Fatalf("expected JSON extraction output, got %q", result.Raw)
	}
	if extraction.ExtractedText != "fetched document body" {
		t.Fatalf("expected tool output as extracted text, got %q", extraction.ExtractedText)
	}
}

func TestMockFollowupTasksTrackInputs(t *testing.T) {
	executor := NewMockExecutor()

	decode := func(t *testing.T, raw string) []domain.FollowupTask {
		t.Helper()
		var tasks []domain.FollowupTask
		if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
			t.Fatalf("expected JSON task list, got %q", raw)
		}
		return tasks
	}

	contract, err := executor.Run(context.Background(), Spec{
		Kind: KindFollowup,
		Inputs: map[string]string{
			InputFilename:  "service_contract.pdf",
			InputUserQuery: "What is the termination clause?",
		},
	})
	if err != nil {
		t.Fatalf("expected mock run to succeed, got %v", err)
	}
	tasks := decode(t, contract.Raw)
	if len(tasks) != 2 {
		t.Fatalf("expected contract + query tasks, got %d", len(tasks))
	}
	if tasks[0].Name != "Review Contract Terms" || tasks[1].Name != "Address User Query" {
		t.Fatalf("unexpected task names %q, %q", tasks[0].Name, tasks[1].Name)
	}

	general, err := executor.Run(context.Background(), Spec{
		Kind:   KindFollowup,
		Inputs: map[string]string{InputFilename: "memo.txt"},
	})
	if err != nil {
		t.Fatalf("expected mock run to succeed, got %v", err)
	}
	tasks = decode(t, general.Raw)
	if len(tasks) != 1 || tasks[0].Name != "General Document Review" {
		t.Fatalf("expected general review fallback, got %+v", tasks)
	}
}

func TestMockExecutorIsNotLive(t *testing.T) {
	if NewMockExecutor().Live() {
		t.Fatalf("mock executor must not report as live")
	}
}
