package models

import "time"

// HistoryAction represents the type of action in history
type HistoryAction string

const (
	HistoryActionCreate       HistoryAction = "CREATE"
	HistoryActionUpdate       HistoryAction = "UPDATE"
	HistoryActionStatusChange HistoryAction = "STATUS_CHANGE"
	HistoryActionAssign       HistoryAction = "ASSIGN"
	HistoryActionReminder     HistoryAction = "REMINDER"
)

// HistoryEntry is one row of a service request's audit trail
type HistoryEntry struct {
	ID           int64         `json:"id"`
	RequestID    int64         `json:"request_id"`
	Action       HistoryAction `json:"action"`
	FieldChanged string        `json:"field_changed,omitempty"`
	OldValue     string        `json:"old_value,omitempty"`
	NewValue     string        `json:"new_value,omitempty"`
	PerformedBy  string        `json:"performed_by"`
	PerformedAt  time.Time     `json:"performed_at"`
	IPAddress    string        `json:"ip_address,omitempty"`
}

// CreateHistoryRequest represents a request to append a history entry
type CreateHistoryRequest struct {
	RequestID    int64
	Action       HistoryAction
	FieldChanged string
	OldValue     string
	NewValue     string
	PerformedBy  string
	IPAddress    string
}
