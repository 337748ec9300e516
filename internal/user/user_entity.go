package user

import (
	"time"

	"go-oms/internal/actor"

	"github.com/google/uuid"
)

const StatusActive = "active"

// User is the read side of the directory the leave engine depends on.
type User struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name       string     `gorm:"column:name;type:varchar(150);not null"`
	Email      string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uq_users_email"`
	Role       actor.Role `gorm:"column:role;type:varchar(20);not null;default:Employee;index:idx_users_role"`
	Department string     `gorm:"column:department;type:varchar(100);not null;default:''"`
	Status     string     `gorm:"column:status;type:varchar(20);not null;default:active"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type Team struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(150);not null"`
	ManagerID uuid.UUID `gorm:"column:manager_id;type:uuid;not null;index:idx_teams_manager"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Team) TableName() string {
	return "teams"
}

type TeamMember struct {
	TeamID uuid.UUID `gorm:"column:team_id;type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

// Filter narrows directory searches. Empty fields match everything.
type Filter struct {
	Department string
	Role       string
	Status     string
	Search     string
}
