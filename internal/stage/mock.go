package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

// MockExecutor produces deterministic canned output so the system runs
// end-to-end without credentials. Extraction echoes pre-supplied text
// verbatim when present and otherwise invokes the fetch tool like the
// live executor would, so degraded-content paths stay exercised.
type MockExecutor struct{}

func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

func (e *MockExecutor) Live() bool {
	return false
}

func (e *MockExecutor) Run(ctx context.Context, spec Spec) (Result, error) {
	var raw string
	switch spec.Kind {
	case KindExtraction:
		raw = e.extraction(ctx, spec)
	case KindFollowup:
		raw = e.followup(spec)
	default:
		raw = fmt.Sprintf("MOCK output for stage %q.", spec.Kind)
	}

	return Result{
		Label:   spec.Kind,
		Raw:     raw,
		ModelID: "mock",
	}, nil
}

func (e *MockExecutor) extraction(ctx context.Context, spec Spec) string {
	extracted := spec.Inputs[InputPreSuppliedText]
	if extracted == "" && len(spec.Tools) > 0 {
		extracted = spec.Tools[0].Run(ctx)
	}
	if extracted == "" {
		extracted = fmt.Sprintf("MOCK extracted content for %s.", spec.Inputs[InputLocation])
	}

	summary := fmt.Sprintf("MOCK summary of %s.", spec.Inputs[InputFilename])
	encoded, err := json.Marshal(domain.ExtractionResult{
		ExtractedText: extracted,
		Summary:       summary,
	})
	if err != nil {
		return fmt.Sprintf("MOCK extraction failed to encode: %v", err)
	}
	return string(encoded)
}

func (e *MockExecutor) followup(spec Spec) string {
	tasks := make([]domain.FollowupTask, 0, 2)

	filename := spec.Inputs[InputFilename]
	if strings.Contains(strings.ToLower(filename), "contract") {
		tasks = append(tasks, domain.FollowupTask{
			Name:                 "Review Contract Terms",
			Description:          fmt.Sprintf("MOCK: thoroughly review the terms in %s.", filename),
			AgentRoleSuggestion:  "Legal Analyst Agent",
			ExpectedOutputFormat: "Bullet-point list of notable clauses",
		})
	}
	if query := spec.Inputs[InputUserQuery]; query != "" {
		tasks = append(tasks, domain.FollowupTask{
			Name:                 "Address User Query",
			Description:          fmt.Sprintf("MOCK: address the query %q based on the document.", query),
			AgentRoleSuggestion:  "Client Communication Agent",
			ExpectedOutputFormat: "Short written answer",
		})
	}
	if len(tasks) == 0 {
		tasks = append(tasks, domain.FollowupTask{
			Name:                 "General Document Review",
			Description:          fmt.Sprintf("MOCK: perform a general review of %s.", filename),
			AgentRoleSuggestion:  "Junior Associate Agent",
			ExpectedOutputFormat: "One-paragraph assessment",
		})
	}

	encoded, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Sprintf("MOCK followup failed to encode: %v", err)
	}
	return string(encoded)
}
