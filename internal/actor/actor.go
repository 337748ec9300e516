package actor

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleHR       Role = "HR"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// Actor is the caller identity threaded through every service call.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// System is the actor used for scheduled and event-driven work. It has no user id.
var System = Actor{Role: RoleAdmin}

func New(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role}
}

func (a Actor) IsSystem() bool {
	return a.ID == uuid.Nil
}

// CanManage reports whether the actor may administer quotas, types and other users' requests.
func (a Actor) CanManage() bool {
	return a.Role == RoleAdmin || a.Role == RoleHR
}

// UserID returns nil for the system actor so it can be stored as a nullable column.
func (a Actor) UserID() *uuid.UUID {
	if a.IsSystem() {
		return nil
	}
	id := a.ID
	return &id
}

func ParseRole(v string) (Role, bool) {
	switch Role(v) {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return Role(v), true
	default:
		return "", false
	}
}
