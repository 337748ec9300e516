package leavequota

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	ChangeFieldAdjust   = "adjust"
	ChangeFieldRollback = "rollback"
)

// LeaveQuota is one row of the ledger, unique per (user, leave type, year).
type LeaveQuota struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_leave_quota_key"`
	LeaveTypeID uuid.UUID       `gorm:"column:leave_type_id;type:uuid;not null;uniqueIndex:uq_leave_quota_key"`
	Year        int             `gorm:"column:year;not null;uniqueIndex:uq_leave_quota_key;index:idx_leave_quotas_year"`
	Allocated   decimal.Decimal `gorm:"column:allocated;type:numeric(6,2);not null"`
	CarriedOver decimal.Decimal `gorm:"column:carried_over;type:numeric(6,2);not null"`
	Used        decimal.Decimal `gorm:"column:used;type:numeric(6,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (LeaveQuota) TableName() string {
	return "leave_quotas"
}

func (q LeaveQuota) Key() Key {
	return Key{UserID: q.UserID, LeaveTypeID: q.LeaveTypeID, Year: q.Year}
}

// Remaining is the ledger balance, carried-over days included.
func (q LeaveQuota) Remaining() decimal.Decimal {
	return q.Allocated.Add(q.CarriedOver).Sub(q.Used)
}

// LeaveQuotaChange is an append-only history row written on every manual change.
type LeaveQuotaChange struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	LeaveQuotaID uuid.UUID      `gorm:"column:leave_quota_id;type:uuid;not null;index:idx_leave_quota_changes_quota"`
	ChangedBy    *uuid.UUID     `gorm:"column:changed_by;type:uuid"`
	Field        string         `gorm:"column:field;type:varchar(50);not null"`
	OldValue     datatypes.JSON `gorm:"column:old_value"`
	NewValue     datatypes.JSON `gorm:"column:new_value"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null;index:idx_leave_quota_changes_quota"`
}

func (LeaveQuotaChange) TableName() string {
	return "leave_quota_changes"
}

type Key struct {
	UserID      uuid.UUID
	LeaveTypeID uuid.UUID
	Year        int
}

// Snapshot is the audited shape of a quota row.
type Snapshot struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user"`
	LeaveTypeID uuid.UUID       `json:"leaveType"`
	Year        int             `json:"year"`
	Allocated   decimal.Decimal `json:"allocated"`
	CarriedOver decimal.Decimal `json:"carriedOver"`
	Used        decimal.Decimal `json:"used"`
}

func (q LeaveQuota) Snapshot() Snapshot {
	return Snapshot{
		ID:          q.ID,
		UserID:      q.UserID,
		LeaveTypeID: q.LeaveTypeID,
		Year:        q.Year,
		Allocated:   q.Allocated,
		CarriedOver: q.CarriedOver,
		Used:        q.Used,
	}
}

func (s Snapshot) applyTo(q *LeaveQuota) {
	q.UserID = s.UserID
	q.LeaveTypeID = s.LeaveTypeID
	q.Year = s.Year
	q.Allocated = s.Allocated
	q.CarriedOver = s.CarriedOver
	q.Used = s.Used
}
