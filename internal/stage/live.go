package stage

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/giulianni/lawfirm-ai-back/internal/ai"
)

// LiveExecutor delegates stage work to the language-model collaborator.
// Tool outputs are materialized into the prompt before the call; the
// pipelines only attach a tool when its result is actually needed.
type LiveExecutor struct {
	client ai.TextCompleter
	router *ai.ModelRouter
	logger *log.Logger
}

func NewLiveExecutor(client ai.TextCompleter, router *ai.ModelRouter, logger *log.Logger) *LiveExecutor {
	return &LiveExecutor{client: client, router: router, logger: logger}
}

func (e *LiveExecutor) Live() bool {
	return e.client != nil && e.client.Available()
}

func (e *LiveExecutor) Run(ctx context.Context, spec Spec) (Result, error) {
	if !e.Live() {
		return Result{}, ai.ErrLLMUnavailable
	}

	prompt := e.buildPrompt(ctx, spec)
	profile := e.router.Select(ai.StageKind(spec.Kind))

	request := ai.CompletionRequest{
		Model:           profile.PrimaryModel,
		Instructions:    spec.ExpectedOutput,
		Prompt:          prompt,
		Temperature:     profile.Temperature,
		MaxOutputTokens: profile.MaxOutputTokens,
	}

	completion, err := e.client.Complete(ctx, request)
	if err != nil && profile.FallbackModel != "" && profile.FallbackModel != profile.PrimaryModel {
		e.logf("stage %s primary model %s failed, trying fallback %s: %v",
			spec.Kind, profile.PrimaryModel, profile.FallbackModel, err)
		request.Model = profile.FallbackModel
		completion, err = e.client.Complete(ctx, request)
	}
	if err != nil {
		return Result{}, fmt.Errorf("stage %s: %w", spec.Kind, err)
	}

	return Result{
		Label:   spec.Kind,
		Raw:     completion.Text,
		ModelID: completion.ModelID,
	}, nil
}

func (e *LiveExecutor) buildPrompt(ctx context.Context, spec Spec) string {
	var builder strings.Builder

	builder.WriteString(spec.Description)
	builder.WriteString("\n")

	if len(spec.Inputs) > 0 {
		keys := make([]string, 0, len(spec.Inputs))
		for key := range spec.Inputs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		builder.WriteString("\nInputs:\n")
		for _, key := range keys {
			fmt.Fprintf(&builder, "- %s: %s\n", key, spec.Inputs[key])
		}
	}

	for _, prior := range spec.Context {
		fmt.Fprintf(&builder, "\nOutput of previous step (%s):\n%s\n", prior.Label, prior.Raw)
	}

	for _, tool := range spec.Tools {
		output := tool.Run(ctx)
		fmt.Fprintf(&builder, "\nResult of tool %q (%s):\n%s\n", tool.Name, tool.Description, output)
	}

	return builder.String()
}

func (e *LiveExecutor) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}
