package handlers

import (
	"net/http"
	"strings"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

type parseDocumentRequest struct {
	Bucket          string `json:"bucket"`
	Path            string `json:"path"`
	Filename        string `json:"filename"`
	PreSuppliedText string `json:"pre_supplied_text,omitempty"`
	UserQuery       string `json:"user_query,omitempty"`
	UserID          string `json:"user_id,omitempty"`
}

type draftDocumentRequest struct {
	CaseID               string         `json:"case_id"`
	TemplateID           string         `json:"template_id"`
	ClientData           map[string]any `json:"client_data"`
	OperatorInstructions string         `json:"operator_instructions,omitempty"`
	UserID               string         `json:"user_id,omitempty"`
}

// ParseDocument starts the document-parser pipeline and answers with the
// queued task id; clients poll /v1/tasks/{id} for progress.
func (api *API) ParseDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var request parseDocumentRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}

	request.Filename = strings.TrimSpace(request.Filename)
	if request.Filename == "" || !hasExtension(request.Filename) {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "filename with an extension is required")
		return
	}
	if strings.TrimSpace(request.Bucket) == "" || strings.TrimSpace(request.Path) == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "bucket and path are required")
		return
	}

	ack, err := api.dispatcher.EnqueueParse(r.Context(), domain.ParseRequest{
		Location: domain.FileLocation{
			Bucket:   strings.TrimSpace(request.Bucket),
			Path:     strings.TrimSpace(request.Path),
			Filename: request.Filename,
		},
		PreSuppliedText: request.PreSuppliedText,
		UserQuery:       strings.TrimSpace(request.UserQuery),
		UserID:          strings.TrimSpace(request.UserID),
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"task_id": ack.TaskID,
			"status":  ack.Status,
			"error": map[string]any{
				"code":    "enqueue_failed",
				"message": "failed to schedule document processing",
			},
		})
		return
	}

	writeJSON(w, http.StatusAccepted, ack)
}

// DraftDocument starts the document-drafter pipeline.
func (api *API) DraftDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var request draftDocumentRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}

	if strings.TrimSpace(request.CaseID) == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "case_id is required")
		return
	}
	if strings.TrimSpace(request.TemplateID) == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "template_id is required")
		return
	}
	if len(request.ClientData) == 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "client_data is required")
		return
	}

	ack, err := api.dispatcher.EnqueueDraft(r.Context(), domain.DraftRequest{
		CaseID:               strings.TrimSpace(request.CaseID),
		TemplateID:           strings.TrimSpace(request.TemplateID),
		ClientData:           request.ClientData,
		OperatorInstructions: request.OperatorInstructions,
		UserID:               strings.TrimSpace(request.UserID),
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"task_id": ack.TaskID,
			"status":  ack.Status,
			"error": map[string]any{
				"code":    "enqueue_failed",
				"message": "failed to schedule document drafting",
			},
		})
		return
	}

	writeJSON(w, http.StatusAccepted, ack)
}
