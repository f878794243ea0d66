package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/audit"
	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/repository"
	"github.com/giulianni/lawfirm-ai-back/internal/stage"
	"github.com/giulianni/lawfirm-ai-back/internal/status"
	"github.com/giulianni/lawfirm-ai-back/internal/storage"
	"github.com/google/uuid"
)

const draftingDescription = `You are drafting a legal document for a law firm.
Populate the template below with the client data provided.
For any client-data field that is missing, keep the template's own default marker for it.
Follow the operator instructions exactly where they apply.
Your response must contain ONLY the populated document text, with no commentary, preamble or explanation.`

// DraftingPipeline runs the document-drafter workflow:
// queued -> in_progress -> completed | error. Single attempt, no partial
// success: the output is one document artifact, so it either fully exists
// or the run is an error.
type DraftingPipeline struct {
	store     *status.Store
	executor  stage.Executor
	templates repository.TemplatesRepository
	documents repository.DocumentsRepository
	objects   storage.ObjectStore
	bucket    string
	auditor   *audit.Service
	logger    *log.Logger
}

type DraftingDependencies struct {
	Store     *status.Store
	Executor  stage.Executor
	Templates repository.TemplatesRepository
	Documents repository.DocumentsRepository
	Objects   storage.ObjectStore
	Bucket    string
	Auditor   *audit.Service
	Logger    *log.Logger
}

func NewDraftingPipeline(deps DraftingDependencies) *DraftingPipeline {
	bucket := deps.Bucket
	if bucket == "" {
		bucket = "generated-documents"
	}
	return &DraftingPipeline{
		store:     deps.Store,
		executor:  deps.Executor,
		templates: deps.Templates,
		documents: deps.Documents,
		objects:   deps.Objects,
		bucket:    bucket,
		auditor:   deps.Auditor,
		logger:    deps.Logger,
	}
}

func (p *DraftingPipeline) Run(ctx context.Context, taskID string, request domain.DraftRequest) (run RunResult) {
	if taskID == "" {
		p.logf("CRITICAL: drafting run without an established task id (case %s)", request.CaseID)
		return RunResult{Outcome: OutcomeError}
	}

	run = RunResult{TaskID: taskID, Outcome: OutcomeError}
	defer func() {
		if recovered := recover(); recovered != nil {
			p.logf("drafting run panicked task_id=%s: %v", taskID, recovered)
			p.fail(ctx, taskID, request.UserID,
				fmt.Sprintf("Document drafting failed: %v", recovered),
				map[string]any{
					"error": fmt.Sprint(recovered),
					"trace": string(debug.Stack()),
				})
			run = RunResult{TaskID: taskID, Outcome: OutcomeError}
		}
	}()

	// Pre-flight: drafting has no meaningful mock fallback and no way to
	// persist without its collaborators; refuse before any external call.
	if p.executor == nil || !p.executor.Live() {
		p.fail(ctx, taskID, request.UserID,
			"Document drafting requires a configured language model; none is available.", nil)
		return RunResult{TaskID: taskID, Outcome: OutcomeError}
	}
	if p.objects == nil || p.documents == nil || p.templates == nil {
		p.fail(ctx, taskID, request.UserID,
			"Document drafting requires storage and database collaborators; configuration is incomplete.", nil)
		return RunResult{TaskID: taskID, Outcome: OutcomeError}
	}

	p.write(ctx, request.UserID, status.Write{
		TaskID:  taskID,
		Status:  domain.TaskStatusInProgress,
		Message: fmt.Sprintf("Drafting document from template %s for case %s", request.TemplateID, request.CaseID),
	})

	template, err := p.templates.GetTemplate(ctx, request.TemplateID)
	if err != nil {
		p.fail(ctx, taskID, request.UserID,
			fmt.Sprintf("Template %s could not be loaded: %v", request.TemplateID, err),
			map[string]any{"error": err.Error(), "stage": "load_template"})
		return RunResult{TaskID: taskID, Outcome: OutcomeError}
	}

	generationDate := time.Now().UTC().Format("2006-01-02")
	prompt, err := buildDraftPrompt(template.Content, request, generationDate)
	if err != nil {
		p.fail(ctx, taskID, request.UserID,
			fmt.Sprintf("Could not assemble drafting prompt: %v", err),
			map[string]any{"error": err.Error(), "stage": "build_prompt"})
		return RunResult{TaskID: taskID, Outcome: OutcomeError}
	}

	draftStage, err := p.executor.Run(ctx, stage.Spec{
		Kind:           stage.KindDrafting,
		Description:    prompt,
		ExpectedOutput: "The populated document text and nothing else.",
	})
	if err != nil {
		p.fail(ctx, taskID, request.UserID,
			fmt.Sprintf("Document generation failed: %v", err),
			map[string]any{"error": err.Error(), "stage": stage.KindDrafting})
		return RunResult{TaskID: taskID, Outcome: OutcomeError}
	}

	document := strings.TrimSpace(draftStage.Raw)
	if document == "" {
		// An empty document is never an acceptable drafting outcome.
		p.fail(ctx, taskID, request.UserID,
			"LLM did not produce a document string.",
			map[string]any{"stage": stage.KindDrafting})
		return RunResult{TaskID: taskID, Outcome: OutcomeError}
	}

	filename := draftFilename(request.TemplateID, request.CaseID, taskID)
	storagePath := request.CaseID + "/" + filename
	payload := []byte(document)

	if err := p.objects.Upload(ctx, p.bucket, storagePath, payload, "text/plain; charset=utf-8", true); err != nil {
		p.fail(ctx, taskID, request.UserID,
			fmt.Sprintf("Upload of drafted document failed: %v", err),
			map[string]any{"error": err.Error(), "stage": "upload"})
		return RunResult{TaskID: taskID, Outcome: OutcomeError}
	}

	record := &domain.GeneratedDocument{
		ID:           uuid.NewString(),
		CaseID:       request.CaseID,
		Filename:     filename,
		StoragePath:  storagePath,
		SizeBytes:    len(payload),
		MimeType:     "text/plain",
		Bucket:       p.bucket,
		GeneratedAt:  time.Now().UTC(),
		UserID:       request.UserID,
		DocumentType: documentType(request.TemplateID),
		Description:  "Drafted document generated by task " + taskID,
		TaskID:       taskID,
	}

	documentID, err := p.documents.InsertDocument(ctx, record)
	if err != nil || documentID == "" {
		if err == nil {
			err = fmt.Errorf("insert returned no document id")
		}
		// Compensating action: remove the uploaded object so a failed
		// database insert cannot leave an orphaned file behind.
		if deleteErr := p.objects.Delete(ctx, p.bucket, storagePath); deleteErr != nil {
			p.logf("compensating delete failed for %s/%s: %v", p.bucket, storagePath, deleteErr)
		}
		p.fail(ctx, taskID, request.UserID,
			fmt.Sprintf("Recording drafted document failed: %v", err),
			map[string]any{"error": err.Error(), "stage": "record"})
		return RunResult{TaskID: taskID, Outcome: OutcomeError}
	}

	p.auditor.LogEvent(ctx, request.UserID, "document.drafted", "generated_document", documentID, map[string]any{
		"case_id":      request.CaseID,
		"template_id":  request.TemplateID,
		"task_id":      taskID,
		"storage_path": storagePath,
	})

	p.write(ctx, request.UserID, status.Write{
		TaskID:  taskID,
		Status:  domain.TaskStatusCompleted,
		Message: "Document drafted and stored as " + filename,
		Result: map[string]any{
			"document_id":  documentID,
			"storage_path": storagePath,
			"filename":     filename,
			"bucket":       p.bucket,
		},
	})
	return RunResult{TaskID: taskID, Outcome: OutcomeSuccess}
}

func buildDraftPrompt(templateContent string, request domain.DraftRequest, generationDate string) (string, error) {
	clientData, err := json.MarshalIndent(request.ClientData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode client data: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(draftingDescription)
	builder.WriteString("\n\nTemplate:\n")
	builder.WriteString(templateContent)
	builder.WriteString("\n\nClient data (JSON):\n")
	builder.Write(clientData)
	builder.WriteString("\n\nOperator instructions:\n")
	if strings.TrimSpace(request.OperatorInstructions) == "" {
		builder.WriteString("(none)")
	} else {
		builder.WriteString(request.OperatorInstructions)
	}
	fmt.Fprintf(&builder, "\n\nGeneration date: %s\nCase ID: %s\n", generationDate, request.CaseID)
	return builder.String(), nil
}

// draftFilename derives a deterministic output name from the template,
// case and task identifiers with separator characters stripped.
func draftFilename(templateID, caseID, taskID string) string {
	return strings.Join([]string{
		stripSeparators(templateID),
		stripSeparators(caseID),
		stripSeparators(taskID),
	}, "_") + ".txt"
}

func stripSeparators(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '.', '_', '-', ' ':
			return -1
		}
		return r
	}, value)
}

// documentType derives a coarse artifact type from the template id, e.g.
// "engagement-letter-v2" -> "engagement-letter".
func documentType(templateID string) string {
	trimmed := strings.TrimSpace(strings.ToLower(templateID))
	if idx := strings.LastIndex(trimmed, "-v"); idx > 0 {
		suffix := trimmed[idx+2:]
		if suffix != "" && strings.IndexFunc(suffix, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
			return trimmed[:idx]
		}
	}
	return trimmed
}

func (p *DraftingPipeline) fail(ctx context.Context, taskID, userID, message string, result map[string]any) {
	p.write(ctx, userID, status.Write{
		TaskID:  taskID,
		Status:  domain.TaskStatusError,
		Message: message,
		Result:  result,
	})
}

func (p *DraftingPipeline) write(ctx context.Context, userID string, write status.Write) {
	write.CrewType = domain.CrewDocumentDrafter
	write.UserID = userID
	p.store.CreateOrUpdate(ctx, write)
}

func (p *DraftingPipeline) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
