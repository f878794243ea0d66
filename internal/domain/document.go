package domain

import "time"

// FileLocation identifies a stored object. Filename carries the original
// upload name whose extension selects the text extractor.
type FileLocation struct {
	Bucket   string `json:"bucket"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// ParseRequest is the payload of a document-parser run.
type ParseRequest struct {
	Location        FileLocation `json:"location"`
	PreSuppliedText string       `json:"pre_supplied_text,omitempty"`
	UserQuery       string       `json:"user_query,omitempty"`
	UserID          string       `json:"user_id,omitempty"`
}

// DraftRequest is the payload of a document-drafter run.
type DraftRequest struct {
	CaseID               string         `json:"case_id"`
	TemplateID           string         `json:"template_id"`
	ClientData           map[string]any `json:"client_data"`
	OperatorInstructions string         `json:"operator_instructions,omitempty"`
	UserID               string         `json:"user_id,omitempty"`
}

// ExtractionResult is the structured output contract of the first
// parsing stage. ExtractedText may hold a fetcher sentinel string instead
// of document content; the pipeline classifies that separately.
type ExtractionResult struct {
	ExtractedText string `json:"extracted_text"`
	Summary       string `json:"summary"`
}

// FollowupTask is one entry of the second parsing stage's output list.
type FollowupTask struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	AgentRoleSuggestion  string `json:"agent_role_suggestion"`
	ExpectedOutputFormat string `json:"expected_output_format"`
}

// DocumentTemplate is a draftable template loaded from the template store.
type DocumentTemplate struct {
	ID        string
	Name      string
	Content   string
	UpdatedAt time.Time
}

// GeneratedDocument describes a drafted artifact persisted to object
// storage, recorded in the database and back-referenced to its task.
type GeneratedDocument struct {
	ID           string
	CaseID       string
	Filename     string
	StoragePath  string
	SizeBytes    int
	MimeType     string
	Bucket       string
	GeneratedAt  time.Time
	UserID       string
	DocumentType string
	Description  string
	TaskID       string
}
