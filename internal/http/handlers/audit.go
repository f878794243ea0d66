package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
)

// ListAuditEvents serves the audit trail, newest first. Filters are all
// optional query parameters.
func (api *API) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	query := r.URL.Query()
	filter := domain.AuditFilter{
		UserID:       strings.TrimSpace(query.Get("user_id")),
		Action:       strings.TrimSpace(query.Get("action")),
		ResourceType: strings.TrimSpace(query.Get("resource_type")),
		Limit:        50,
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "limit must be between 1 and 500")
			return
		}
		filter.Limit = limit
	}
	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "from must be RFC 3339")
			return
		}
		filter.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "to must be RFC 3339")
			return
		}
		filter.To = &to
	}

	events, err := api.auditor.List(r.Context(), filter)
	if err != nil {
		if api.logger != nil {
			api.logger.Printf("audit list failed: %v", err)
		}
		writeError(w, r, http.StatusInternalServerError, "audit_unavailable", "could not list audit events")
		return
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
