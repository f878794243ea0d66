package pipeline

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/fetcher"
	"github.com/giulianni/lawfirm-ai-back/internal/stage"
	"github.com/giulianni/lawfirm-ai-back/internal/status"
)

const extractionDescription = `You are processing a legal document for a law firm.
Produce the document's plain text and a concise summary.
If the input below contains pre-supplied text, use it verbatim as the extracted text.
Otherwise the result of the document fetch tool holds the text; use that.
If the fetched content describes a fetch or extraction problem rather than document content, carry it through unchanged as the extracted text.`

const extractionOutputContract = `Respond with a single JSON object and nothing else:
{"extracted_text": "<the full plain text>", "summary": "<a concise summary>"}`

const followupDescription = `You are a senior legal assistant. Based on the extracted document text and summary from the previous step, define concrete follow-up tasks for the legal team.`

const followupQueryAddendum = `Give priority to tasks that address the user's query.`

const followupGeneralAddendum = `No specific query was supplied; perform a general analysis of the document and derive the tasks from it.`

const followupOutputContract = `Respond with a single JSON array and nothing else. Each element:
{"name": "...", "description": "...", "agent_role_suggestion": "...", "expected_output_format": "..."}`

// ParsingPipeline runs the document-parser workflow:
// queued -> in_progress(extracting) -> in_progress(defining follow-ups)
// -> completed | completed_with_issues | error.
type ParsingPipeline struct {
	store    *status.Store
	executor stage.Executor
	fetcher  *fetcher.Fetcher
	logger   *log.Logger
}

func NewParsingPipeline(store *status.Store, executor stage.Executor, contentFetcher *fetcher.Fetcher, logger *log.Logger) *ParsingPipeline {
	return &ParsingPipeline{
		store:    store,
		executor: executor,
		fetcher:  contentFetcher,
		logger:   logger,
	}
}

// fetchTrace records the typed outcome of the fetch tool's last
// invocation within one run. The pipeline classifies extraction failures
// from this tag, never from sentinel substrings.
type fetchTrace struct {
	invoked bool
	issue   fetcher.IssueKind
	detail  string
}

func (p *ParsingPipeline) Run(ctx context.Context, taskID string, request domain.ParseRequest) (run RunResult) {
	if taskID == "" {
		// The dispatcher always creates the record first; reaching this
		// point means the invariant broke upstream.
		p.logf("CRITICAL: parsing run without an established task id (file %s)", request.Location.Filename)
		return RunResult{Outcome: OutcomeError}
	}

	run = RunResult{TaskID: taskID, Outcome: OutcomeError}
	defer func() {
		if recovered := recover(); recovered != nil {
			p.logf("parsing run panicked task_id=%s: %v", taskID, recovered)
			p.write(ctx, request.UserID, status.Write{
				TaskID:  taskID,
				Status:  domain.TaskStatusError,
				Message: fmt.Sprintf("AI processing failed for %s: %v", request.Location.Filename, recovered),
				Result: map[string]any{
					"error": fmt.Sprint(recovered),
					"trace": string(debug.Stack()),
				},
			})
			run = RunResult{TaskID: taskID, Outcome: OutcomeError}
		}
	}()

	filename := request.Location.Filename
	p.write(ctx, request.UserID, status.Write{
		TaskID:  taskID,
		Status:  domain.TaskStatusInProgress,
		Message: "AI processing started for " + filename,
	})

	trace := &fetchTrace{}
	extractionSpec := stage.Spec{
		Kind:           stage.KindExtraction,
		Description:    extractionDescription,
		ExpectedOutput: extractionOutputContract,
		Inputs: map[string]string{
			stage.InputFilename:        filename,
			stage.InputLocation:        request.Location.Bucket + "/" + request.Location.Path,
			stage.InputPreSuppliedText: request.PreSuppliedText,
		},
	}
	if request.PreSuppliedText == "" {
		extractionSpec.Tools = []stage.Tool{p.fetchTool(request.Location, trace)}
	}

	extractionStage, err := p.executor.Run(ctx, extractionSpec)
	if err != nil {
		p.write(ctx, request.UserID, status.Write{
			TaskID:  taskID,
			Status:  domain.TaskStatusError,
			Message: fmt.Sprintf("Extraction stage failed for %s: %v", filename, err),
			Result:  map[string]any{"error": err.Error(), "stage": stage.KindExtraction},
		})
		return RunResult{TaskID: taskID, Outcome: OutcomeError}
	}

	extraction, extractionParsed := parseExtraction(extractionStage.Raw)

	p.write(ctx, request.UserID, status.Write{
		TaskID:  taskID,
		Status:  domain.TaskStatusInProgress,
		Message: "Defining follow-up tasks for " + filename,
	})

	followupSpec := stage.Spec{
		Kind:           stage.KindFollowup,
		Description:    followupPrompt(request.UserQuery),
		ExpectedOutput: followupOutputContract,
		Inputs: map[string]string{
			stage.InputFilename:  filename,
			stage.InputUserQuery: request.UserQuery,
		},
		Context: []stage.Result{extractionStage},
	}

	followupStage, err := p.executor.Run(ctx, followupSpec)
	if err != nil {
		p.write(ctx, request.UserID, status.Write{
			TaskID:  taskID,
			Status:  domain.TaskStatusError,
			Message: fmt.Sprintf("Follow-up task stage failed for %s: %v", filename, err),
			Result:  map[string]any{"error": err.Error(), "stage": stage.KindFollowup},
		})
		return RunResult{TaskID: taskID, Outcome: OutcomeError}
	}

	result := map[string]any{
		"crew_output": map[string]any{
			stage.KindExtraction: extractionStage.Raw,
			stage.KindFollowup:   followupStage.Raw,
		},
	}
	if followups, ok := parseFollowups(followupStage.Raw); ok {
		result["followup_tasks"] = followups
	}

	if !extractionParsed {
		// The stage produced something the schema cannot account for.
		// Preserve the raw string and finish as a success: the run itself
		// worked, only the structured view is missing.
		result["text_extraction_status"] = extractionUnknown
		p.write(ctx, request.UserID, status.Write{
			TaskID:  taskID,
			Status:  domain.TaskStatusCompleted,
			Message: "AI processing completed for " + filename,
			Result:  result,
		})
		return RunResult{TaskID: taskID, Outcome: OutcomeSuccess}
	}

	result["extraction"] = extraction

	if failed, detail := classifyExtraction(extraction, trace); failed {
		result["text_extraction_status"] = extractionFailed
		result["text_extraction_detail"] = detail
		p.write(ctx, request.UserID, status.Write{
			TaskID:  taskID,
			Status:  domain.TaskStatusCompletedWithIssues,
			Message: "AI processing completed with issues for " + filename,
			Result:  result,
		})
		return RunResult{TaskID: taskID, Outcome: OutcomeSuccessWithIssues}
	}

	result["text_extraction_status"] = extractionOK
	p.write(ctx, request.UserID, status.Write{
		TaskID:  taskID,
		Status:  domain.TaskStatusCompleted,
		Message: "AI processing completed for " + filename,
		Result:  result,
	})
	return RunResult{TaskID: taskID, Outcome: OutcomeSuccess}
}

// classifyExtraction decides whether the run produced usable document
// text. The typed tool trace is authoritative; an empty extracted text
// counts as failed even without a trace.
func classifyExtraction(extraction domain.ExtractionResult, trace *fetchTrace) (bool, string) {
	if trace.invoked && trace.issue != fetcher.IssueNone {
		return true, fmt.Sprintf("%s: %s", trace.issue, trace.detail)
	}
	if extraction.ExtractedText == "" {
		return true, string(fetcher.IssueEmptyContent) + ": extraction produced no text"
	}
	return false, ""
}

func (p *ParsingPipeline) fetchTool(location domain.FileLocation, trace *fetchTrace) stage.Tool {
	return stage.Tool{
		Name:        "fetch_document_text",
		Description: "downloads the stored document and extracts its plain text",
		Run: func(ctx context.Context) string {
			result := p.fetcher.FetchText(ctx, location)
			trace.invoked = true
			trace.issue = result.Issue
			if !result.OK() {
				trace.detail = result.Text
			}
			return result.Text
		},
	}
}

func followupPrompt(userQuery string) string {
	if userQuery == "" {
		return followupDescription + "\n" + followupGeneralAddendum
	}
	return followupDescription + "\n" + followupQueryAddendum
}

func (p *ParsingPipeline) write(ctx context.Context, userID string, write status.Write) {
	write.CrewType = domain.CrewDocumentParser
	write.UserID = userID
	p.store.CreateOrUpdate(ctx, write)
}

func (p *ParsingPipeline) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
