package domain

import "time"

// AuditEvent records who did what to which resource. Audit writes are
// best-effort and never fail the operation they describe.
type AuditEvent struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditFilter narrows audit log queries.
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	From         *time.Time
	To           *time.Time
	Limit        int
}
