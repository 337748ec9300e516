package leaverequest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

type LeaveRequest struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:idx_leave_requests_user"`
	LeaveTypeID uuid.UUID       `gorm:"column:leave_type_id;type:uuid;not null"`
	StartDate   time.Time       `gorm:"column:start_date;type:date;not null"`
	EndDate     time.Time       `gorm:"column:end_date;type:date;not null"`
	Days        decimal.Decimal `gorm:"column:days;type:numeric(6,2);not null"`
	Reason      string          `gorm:"column:reason;type:text;not null"`
	IsHalfDay   bool            `gorm:"column:is_half_day;not null"`
	Status      string          `gorm:"column:status;type:varchar(20);not null;index:idx_leave_requests_status"`
	ApproverID  *uuid.UUID      `gorm:"column:approver_id;type:uuid"`
	CreatedAt   time.Time       `gorm:"column:created_at;index:idx_leave_requests_user"`
	UpdatedAt   time.Time

	Comments []Comment `gorm:"foreignKey:LeaveRequestID"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// Year selects the quota row a request draws from.
func (r LeaveRequest) Year() int {
	return r.StartDate.Year()
}

type Comment struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	LeaveRequestID uuid.UUID `gorm:"column:leave_request_id;type:uuid;not null;index:idx_leave_request_comments_request"`
	AuthorID       uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	Text           string    `gorm:"column:text;type:text;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;index:idx_leave_request_comments_request"`
}

func (Comment) TableName() string {
	return "leave_request_comments"
}
