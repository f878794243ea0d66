package pipeline

import "testing"

func TestParseExtractionAcceptsContractOutput(t *testing.T) {
	raw := `{"extracted_text": "body", "summary": "short"}`
	extraction, ok := parseExtraction(raw)
	if !ok {
		t.Fatalf("expected valid extraction to parse")
	}
	if extraction.ExtractedText != "body" || extraction.Summary != "short" {
		t.Fatalf("unexpected extraction %+v", extraction)
	}
}

func TestParseExtractionStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"extracted_text\": \"body\", \"summary\": \"short\"}\n```"
	extraction, ok := parseExtraction(raw)
	if !ok {
		t.Fatalf("expected fenced extraction to parse")
	}
	if extraction.ExtractedText != "body" {
		t.Fatalf("unexpected extraction %+v", extraction)
	}
}

func TestParseExtractionRejectsOffContractOutput(t *testing.T) {
	for _, raw := range []string{
		"free-form prose",
		`{"extracted_text": "body"}`,
		`{"extracted_text": "body", "summary": "short", "extra": true}`,
		`["not", "an", "object"]`,
	} {
		if _, ok := parseExtraction(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestParseFollowupsAcceptsTaskList(t *testing.T) {
	raw := `[{"name": "Review Contract Terms", "description": "look at clauses", "agent_role_suggestion": "Legal Analyst Agent", "expected_output_format": "bullet points"}]`
	tasks, ok := parseFollowups(raw)
	if !ok {
		t.Fatalf("expected valid task list to parse")
	}
	if len(tasks) != 1 || tasks[0].Name != "Review Contract Terms" {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
}

func TestParseFollowupsRejectsUnnamedTasks(t *testing.T) {
	raw := `[{"name": "", "description": "missing name"}]`
	if _, ok := parseFollowups(raw); ok {
		t.Fatalf("expected empty task name to be rejected")
	}
}
