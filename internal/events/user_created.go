package events

import "time"

const (
	UserLifecycleTopic = "oms.user.lifecycle.v1"
	UserCreatedType    = "user_created"
)

type UserCreatedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}
