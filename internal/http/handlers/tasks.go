package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/giulianni/lawfirm-ai-back/internal/status"
)

type taskResponse struct {
	ID           string            `json:"id"`
	Status       domain.TaskStatus `json:"status"`
	Details      string            `json:"details,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Result       map[string]any    `json:"result,omitempty"`
	CrewType     domain.CrewType   `json:"crew_type,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	LastUpdated  time.Time         `json:"last_updated"`
}

// GetTask serves status polling. An id that was never recorded is a 404;
// a failing store is a 503 because the task may well exist.
func (api *API) GetTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	taskID := strings.TrimPrefix(r.URL.Path, "/v1/tasks/")
	if taskID == "" || strings.Contains(taskID, "/") {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "task id is required")
		return
	}

	record, err := api.store.Get(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, status.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "task_not_found", "no task with that id")
			return
		}
		writeError(w, r, http.StatusServiceUnavailable, "status_unavailable", "task status is temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{
		ID:           record.ID,
		Status:       record.Status,
		Details:      record.Details,
		ErrorMessage: record.ErrorMessage,
		Result:       record.Result,
		CrewType:     record.CrewType,
		CreatedAt:    record.CreatedAt,
		LastUpdated:  record.LastUpdated,
	})
}
