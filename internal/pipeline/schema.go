package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Stage outputs are model-generated JSON; each one is validated against a
// schema before the pipeline trusts it. Schema mismatch is the
// "unknown_parser_output" branch, not a crash.

func extractionSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"extracted_text": map[string]any{"type": "string"},
			"summary":        map[string]any{"type": "string"},
		},
		"required": []string{"extracted_text", "summary"},
	}
}

func followupListSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"name":                   map[string]any{"type": "string", "minLength": 1},
				"description":            map[string]any{"type": "string"},
				"agent_role_suggestion":  map[string]any{"type": "string"},
				"expected_output_format": map[string]any{"type": "string"},
			},
			"required": []string{"name", "description"},
		},
	}
}

func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	encoded, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("unmarshal output: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("output does not match schema: %w", err)
	}
	return nil
}

// stripCodeFence removes a markdown code fence wrapper if the model added
// one around its JSON output.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func parseExtraction(raw string) (domain.ExtractionResult, bool) {
	cleaned := stripCodeFence(raw)
	if err := validateAgainstSchema(extractionSchema(), []byte(cleaned)); err != nil {
		return domain.ExtractionResult{}, false
	}
	var result domain.ExtractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return domain.ExtractionResult{}, false
	}
	return result, true
}

func parseFollowups(raw string) ([]domain.FollowupTask, bool) {
	cleaned := stripCodeFence(raw)
	if err := validateAgainstSchema(followupListSchema(), []byte(cleaned)); err != nil {
		return nil, false
	}
	var tasks []domain.FollowupTask
	if err := json.Unmarshal([]byte(cleaned), &tasks); err != nil {
		return nil, false
	}
	return tasks, true
}
