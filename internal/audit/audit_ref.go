package audit

import (
	"github.com/google/uuid"
)

type EntityKind string

const (
	KindLeaveQuota EntityKind = "LeaveQuota"
	KindLeaveType  EntityKind = "LeaveType"
)

func (k EntityKind) Valid() bool {
	return k == KindLeaveQuota || k == KindLeaveType
}

// EntityRef identifies the audited row by kind and id.
type EntityRef struct {
	Kind EntityKind
	ID   uuid.UUID
}

func QuotaRef(id uuid.UUID) EntityRef {
	return EntityRef{Kind: KindLeaveQuota, ID: id}
}

func TypeRef(id uuid.UUID) EntityRef {
	return EntityRef{Kind: KindLeaveType, ID: id}
}
