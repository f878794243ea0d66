// Package pipeline orchestrates the two agent workflows: parsing a stored
// document into a summary plus follow-up tasks, and drafting a new
// document from a template and client data.
//
// Nothing escapes a pipeline run as an uncaught fault: every failure path,
// panics included, ends in exactly one terminal status-store write. The
// caller only ever polls the task id.
package pipeline

// Outcome summarizes a finished pipeline run for the worker's logs.
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomeSuccessWithIssues Outcome = "success_with_issues"
	OutcomeError             Outcome = "error"
)

// RunResult reports a run's task id and outcome. TaskID is empty only in
// the abnormal case where a run was invoked without an established id.
type RunResult struct {
	TaskID  string
	Outcome Outcome
}

// Values of the result field text_extraction_status.
const (
	extractionOK      = "ok"
	extractionFailed  = "failed"
	extractionUnknown = "unknown_parser_output"
)
