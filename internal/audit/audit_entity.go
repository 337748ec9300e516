package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionReset    Action = "reset"
	ActionImport   Action = "import"
	ActionRollback Action = "rollback"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionReset, ActionImport, ActionRollback:
		return true
	default:
		return false
	}
}

// AuditLog is append-only. Rows are never updated or deleted.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Action     Action         `gorm:"column:action;type:varchar(20);not null"`
	EntityType EntityKind     `gorm:"column:entity_type;type:varchar(20);not null;index:idx_leave_audit_logs_entity"`
	EntityID   uuid.UUID      `gorm:"column:entity_id;type:uuid;not null;index:idx_leave_audit_logs_entity"`
	ChangedBy  *uuid.UUID     `gorm:"column:changed_by;type:uuid"`
	OldValue   datatypes.JSON `gorm:"column:old_value"`
	NewValue   datatypes.JSON `gorm:"column:new_value"`
	Details    string         `gorm:"column:details;type:text;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null;index:idx_leave_audit_logs_created"`
}

func (AuditLog) TableName() string {
	return "leave_audit_logs"
}

func (l AuditLog) Ref() EntityRef {
	return EntityRef{Kind: l.EntityType, ID: l.EntityID}
}

func (l AuditLog) HasOldValue() bool {
	return hasValue(l.OldValue)
}

func hasValue(v datatypes.JSON) bool {
	s := string(v)
	return len(s) > 0 && s != "null"
}
