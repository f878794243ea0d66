// Package stage runs single labeled units of agent work. Two executor
// implementations exist: a live one backed by the LLM collaborator and a
// deterministic mock used when no credential is configured. The choice is
// made once at process startup and injected into the pipelines.
package stage

import "context"

// Tool is a callable made available to a stage run. Tools are pre-bound
// closures; their output is fed into the stage's working context.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context) string
}

// Spec describes one unit of agent work: what to do, what shape the
// output must take, named inputs, prior stage results and optional tools.
type Spec struct {
	Kind           string
	Description    string
	ExpectedOutput string
	Inputs         map[string]string
	Context        []Result
	Tools          []Tool
}

// Result is a stage's raw output. Raw usually holds JSON, but the
// pipelines parse it defensively and never assume it is well-formed.
type Result struct {
	Label   string
	Raw     string
	ModelID string
}

// Executor runs stages. Live reports whether real model calls back the
// implementation; the drafting pipeline refuses to run without one.
type Executor interface {
	Run(ctx context.Context, spec Spec) (Result, error)
	Live() bool
}

// Stage kind labels shared by both executors and the pipelines.
const (
	KindExtraction = "extraction"
	KindFollowup   = "followup"
	KindDrafting   = "drafting"
)

// Input keys used by the pipelines when building stage specs.
const (
	InputFilename        = "filename"
	InputLocation        = "location"
	InputPreSuppliedText = "pre_supplied_text"
	InputUserQuery       = "user_query"
)
