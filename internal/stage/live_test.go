package stage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/giulianni/lawfirm-ai-back/internal/ai"
)

type stubCompleter struct {
	available bool
	calls     []ai.CompletionRequest
	respond   func(request ai.CompletionRequest) (ai.Completion, error)
}

func (c *stubCompleter) Available() bool {
	return c.available
}

func (c *stubCompleter) Complete(_ context.Context, request ai.CompletionRequest) (ai.Completion, error) {
	c.calls = append(c.calls, request)
	return c.respond(request)
}

func TestLiveExecutorMaterializesToolOutput(t *testing.T) {
	completer := &stubCompleter{
		available: true,
		respond: func(request ai.CompletionRequest) (ai.Completion, error) {
			return ai.Completion{Text: "done", ModelID: request.Model}, nil
		},
	}
	executor := NewLiveExecutor(completer, ai.NewModelRouter(ai.ModelRouterConfig{}), nil)

	_, err := executor.Run(context.Background(), Spec{
		Kind:           KindExtraction,
		Description:    "Extract the document text.",
		ExpectedOutput: "JSON only.",
		Inputs:         map[string]string{InputFilename: "contract.pdf"},
		Tools: []Tool{{
			Name:        "fetch_document_text",
			Description: "downloads the stored document",
			Run:         func(_ context.Context) string { return "the fetched text" },
		}},
	})
	if err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	if len(completer.calls) != 1 {
		t.Fatalf("expected one model call, got %d", len(completer.calls))
	}
	prompt := completer.calls[0].Prompt
	if !strings.Contains(prompt, "the fetched text") {
		t.Fatalf("expected tool output in prompt, got %q", prompt)
	}
	if !strings.Contains(prompt, "contract.pdf") {
		t.Fatalf("expected inputs in prompt, got %q", prompt)
	}
	if completer.calls[0].Instructions != "JSON only." {
		t.Fatalf("expected expected-output contract as instructions, got %q", completer.calls[0].Instructions)
	}
}

func TestLiveExecutorFallsBackToSecondaryModel(t *testing.T) {
	completer := &stubCompleter{
		available: true,
		respond: func(request ai.CompletionRequest) (ai.Completion, error) {
			if request.Model == "primary" {
				return ai.Completion{}, errors.New("model overloaded")
			}
			return ai.Completion{Text: "ok", ModelID: request.Model}, nil
		},
	}
	router := ai.NewModelRouter(ai.ModelRouterConfig{
		ExtractionPrimary:  "primary",
		ExtractionFallback: "secondary",
	})
	executor := NewLiveExecutor(completer, router, nil)

	result, err := executor.Run(context.Background(), Spec{
		Kind:        KindExtraction,
		Description: "Extract.",
	})
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if result.ModelID != "secondary" {
		t.Fatalf("expected fallback model id, got %q", result.ModelID)
	}
	if len(completer.calls) != 2 {
		t.Fatalf("expected primary then fallback call, got %d", len(completer.calls))
	}
}

func TestLiveExecutorIncludesPriorStageContext(t *testing.T) {
	completer := &stubCompleter{
		available: true,
		respond: func(request ai.CompletionRequest) (ai.Completion, error) {
			return ai.Completion{Text: "[]", ModelID: request.Model}, nil
		},
	}
	executor := NewLiveExecutor(completer, ai.NewModelRouter(ai.ModelRouterConfig{}), nil)

	_, err := executor.Run(context.Background(), Spec{
		Kind:        KindFollowup,
		Description: "Define follow-ups.",
		Context: []Result{{
			Label: KindExtraction,
			Raw:   `{"extracted_text":"body","summary":"short"}`,
		}},
	})
	if err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}
	prompt := completer.calls[0].Prompt
	if !strings.Contains(prompt, "Output of previous step (extraction)") {
		t.Fatalf("expected prior stage label in prompt, got %q", prompt)
	}
	if !strings.Contains(prompt, `"extracted_text":"body"`) {
		t.Fatalf("expected prior stage output in prompt, got %q", prompt)
	}
}

func TestLiveExecutorRefusesWhenClientUnavailable(t *testing.T) {
	executor := NewLiveExecutor(&stubCompleter{available: false}, ai.NewModelRouter(ai.ModelRouterConfig{}), nil)
	if executor.Live() {
		t.Fatalf("executor with unavailable client must not report live")
	}
	if _, err := executor.Run(context.Background(), Spec{Kind: KindExtraction}); !errors.Is(err, ai.ErrLLMUnavailable) {
		t.Fatalf("expected ErrLLMUnavailable, got %v", err)
	}
}
