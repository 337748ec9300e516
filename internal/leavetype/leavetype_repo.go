package leavetype

import (
	"context"
	"database/sql"

	"go-oms/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leavetype_repo.go -destination=mock/leavetype_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, t *LeaveType) error
	FindByID(ctx context.Context, id uuid.UUID) (*LeaveType, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]LeaveType, error)
	ExistsActiveByName(ctx context.Context, name string) (bool, error)
	ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, t *LeaveType) error
	List(ctx context.Context, activeOnly bool) ([]LeaveType, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: dbtx.Bind(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, t *LeaveType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*LeaveType, error) {
	var t LeaveType
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]LeaveType, error) {
	var types []LeaveType
	if len(ids) == 0 {
		return types, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) ExistsActiveByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveType{}).
		Where("name = ?", name).
		Where("is_active = ?", true).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveType{}).
		Where("name = ?", name).
		Where("id <> ?", excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, t *LeaveType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]LeaveType, error) {
	db := r.db.WithContext(ctx).Model(&LeaveType{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	var types []LeaveType
	err := db.Order("name ASC").Find(&types).Error
	return types, err
}
