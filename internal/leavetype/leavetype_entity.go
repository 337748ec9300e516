package leavetype

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeaveType struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name            string          `gorm:"column:name;type:varchar(100);not null;index:idx_leave_types_name"`
	Description     string          `gorm:"column:description;type:text;not null"`
	DefaultQuota    decimal.Decimal `gorm:"column:default_quota;type:numeric(6,2);not null"`
	MaxCarryover    decimal.Decimal `gorm:"column:max_carryover;type:numeric(6,2);not null"`
	CarryoverExpiry string          `gorm:"column:carryover_expiry;type:varchar(5);not null"`
	IsActive        bool            `gorm:"column:is_active;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (LeaveType) TableName() string {
	return "leave_types"
}

// Snapshot is the audited shape of a leave type. Rollback writes every field
// back except the id.
type Snapshot struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DefaultQuota    decimal.Decimal `json:"defaultQuota"`
	MaxCarryover    decimal.Decimal `json:"maxCarryover"`
	CarryoverExpiry string          `json:"carryoverExpiry"`
	IsActive        bool            `json:"isActive"`
}

func (t LeaveType) Snapshot() Snapshot {
	return Snapshot{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		DefaultQuota:    t.DefaultQuota,
		MaxCarryover:    t.MaxCarryover,
		CarryoverExpiry: t.CarryoverExpiry,
		IsActive:        t.IsActive,
	}
}

func (s Snapshot) applyTo(t *LeaveType) {
	t.Name = s.Name
	t.Description = s.Description
	t.DefaultQuota = s.DefaultQuota
	t.MaxCarryover = s.MaxCarryover
	t.CarryoverExpiry = s.CarryoverExpiry
	t.IsActive = s.IsActive
}
