package events

import "time"

const (
	LeaveRequestTopic             = "oms.leave.request.v1"
	LeaveRequestStatusChangedType = "leave_request_status_changed"
)

// LeaveRequestStatusChangedEvent is published for every workflow transition, including the initial apply.
type LeaveRequestStatusChangedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	LeaveRequestID string    `json:"leave_request_id"`
	UserID         string    `json:"user_id"`
	LeaveTypeID    string    `json:"leave_type_id"`
	FromStatus     string    `json:"from_status,omitempty"`
	ToStatus       string    `json:"to_status"`
	Days           string    `json:"days"`
	ActorID        string    `json:"actor_id"`
	Comment        string    `json:"comment,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
