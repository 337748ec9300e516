package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	FindAll(ctx context.Context) ([]User, error)
	FindNonAdmin(ctx context.Context) ([]User, error)
	Search(ctx context.Context, filter Filter) ([]User, error)
	FindTeamMemberIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	var users []User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) FindAll(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) FindNonAdmin(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("role <> ?", "Admin").
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) Search(ctx context.Context, filter Filter) ([]User, error) {
	db := r.db.WithContext(ctx).Model(&User{})

	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var users []User
	err := db.Order("name ASC").Find(&users).Error
	return users, err
}

func (r *repository) FindTeamMemberIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("team_members").
		Distinct("team_members.user_id").
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("teams.manager_id = ?", managerID).
		Pluck("team_members.user_id", &ids).Error
	return ids, err
}
