package audit

import "encoding/json"

type ListAuditLogsQuery struct {
	Action     string `form:"action"`
	EntityType string `form:"entityType"`
	User       string `form:"user"`
	EntityID   string `form:"entityId"`
	From       string `form:"from"`
	To         string `form:"to"`
	Limit      int    `form:"limit"`
}

type AuditLogResponse struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	ChangedBy  *string         `json:"changedBy"`
	OldValue   json.RawMessage `json:"oldValue,omitempty"`
	NewValue   json.RawMessage `json:"newValue,omitempty"`
	Details    string          `json:"details"`
	Timestamp  string          `json:"timestamp"`
}

type ListAuditLogsResponse struct {
	Logs []AuditLogResponse `json:"logs"`
}

type RollbackResponse struct {
	Message string `json:"message"`
	Entity  any    `json:"entity"`
}
