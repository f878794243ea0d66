package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/giulianni/lawfirm-ai-back/internal/audit"
	"github.com/giulianni/lawfirm-ai-back/internal/dispatcher"
	"github.com/giulianni/lawfirm-ai-back/internal/http/middleware"
	"github.com/giulianni/lawfirm-ai-back/internal/status"
)

var errInvalidPayload = errors.New("invalid payload")

type API struct {
	dispatcher *dispatcher.Dispatcher
	store      *status.Store
	auditor    *audit.Service
	logger     *log.Logger
}

func NewAPI(taskDispatcher *dispatcher.Dispatcher, store *status.Store, auditor *audit.Service, logger *log.Logger) *API {
	return &API{
		dispatcher: taskDispatcher,
		store:      store,
		auditor:    auditor,
		logger:     logger,
	}
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	payload := errorPayload{RequestID: middleware.GetRequestID(r.Context())}
	payload.Error.Code = code
	payload.Error.Message = message
	writeJSON(w, statusCode, payload)
}

func decodeJSON(r *http.Request, value any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(value); err != nil {
		return errInvalidPayload
	}
	return nil
}

// hasExtension gates dispatch: a filename without any extension is an
// input error rejected before a task record exists. Unsupported but
// well-formed extensions are dispatched anyway and degrade inside the
// pipeline to completed_with_issues.
func hasExtension(filename string) bool {
	return strings.TrimSpace(filepath.Ext(filename)) != ""
}
