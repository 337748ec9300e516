package leavequota

import (
	"context"
	"database/sql"
	"time"

	"go-oms/internal/shared/dbtx"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Filter struct {
	UserID      *uuid.UUID
	LeaveTypeID *uuid.UUID
	Year        int
}

//go:generate mockgen -source=leavequota_repo.go -destination=mock/leavequota_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, q *LeaveQuota) error
	CreateBatch(ctx context.Context, quotas []LeaveQuota) error
	FindByID(ctx context.Context, id uuid.UUID) (*LeaveQuota, error)
	FindByKey(ctx context.Context, key Key) (*LeaveQuota, error)
	ExistsByKey(ctx context.Context, key Key) (bool, error)
	FindByYear(ctx context.Context, year int, userIDs, leaveTypeIDs []uuid.UUID) ([]LeaveQuota, error)
	List(ctx context.Context, filter Filter) ([]LeaveQuota, error)
	Update(ctx context.Context, q *LeaveQuota) error
	Upsert(ctx context.Context, q *LeaveQuota) error
	Debit(ctx context.Context, key Key, days decimal.Decimal) error
	Credit(ctx context.Context, key Key, days decimal.Decimal) error
	CreateChange(ctx context.Context, c *LeaveQuotaChange) error
	ListChanges(ctx context.Context, quotaID uuid.UUID) ([]LeaveQuotaChange, error)
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

func (r *repository) Create(ctx context.Context, q *LeaveQuota) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *repository) CreateBatch(ctx context.Context, quotas []LeaveQuota) error {
	if len(quotas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(quotas, 500).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*LeaveQuota, error) {
	var q LeaveQuota
	err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error
	return &q, err
}

func (r *repository) FindByKey(ctx context.Context, key Key) (*LeaveQuota, error) {
	var q LeaveQuota
	err := r.byKey(r.db.WithContext(ctx), key).First(&q).Error
	return &q, err
}

func (r *repository) ExistsByKey(ctx context.Context, key Key) (bool, error) {
	var count int64
	err := r.byKey(r.db.WithContext(ctx).Model(&LeaveQuota{}), key).Count(&count).Error
	return count > 0, err
}

func (r *repository) FindByYear(ctx context.Context, year int, userIDs, leaveTypeIDs []uuid.UUID) ([]LeaveQuota, error) {
	db := r.db.WithContext(ctx).Where("year = ?", year)
	if userIDs != nil {
		if len(userIDs) == 0 {
			return []LeaveQuota{}, nil
		}
		db = db.Where("user_id IN ?", userIDs)
	}
	if leaveTypeIDs != nil {
		if len(leaveTypeIDs) == 0 {
			return []LeaveQuota{}, nil
		}
		db = db.Where("leave_type_id IN ?", leaveTypeIDs)
	}

	var quotas []LeaveQuota
	err := db.Find(&quotas).Error
	return quotas, err
}

func (r *repository) List(ctx context.Context, filter Filter) ([]LeaveQuota, error) {
	db := r.db.WithContext(ctx).Model(&LeaveQuota{})
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.LeaveTypeID != nil {
		db = db.Where("leave_type_id = ?", *filter.LeaveTypeID)
	}
	if filter.Year != 0 {
		db = db.Where("year = ?", filter.Year)
	}

	var quotas []LeaveQuota
	err := db.Order("year DESC").Order("created_at ASC").Find(&quotas).Error
	return quotas, err
}

func (r *repository) Update(ctx context.Context, q *LeaveQuota) error {
	return r.db.WithContext(ctx).Save(q).Error
}

// Upsert inserts the row or overwrites the balances of the row holding the same key.
func (r *repository) Upsert(ctx context.Context, q *LeaveQuota) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "leave_type_id"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"allocated", "carried_over", "used", "updated_at",
		}),
	}).Create(q).Error
}

// Debit increments used in a single statement. A missing row is reported as
// gorm.ErrRecordNotFound.
func (r *repository) Debit(ctx context.Context, key Key, days decimal.Decimal) error {
	return r.increment(ctx, key, "used + ?", days)
}

// Credit decrements used in a single statement. There is no floor at zero.
func (r *repository) Credit(ctx context.Context, key Key, days decimal.Decimal) error {
	return r.increment(ctx, key, "used - ?", days)
}

func (r *repository) increment(ctx context.Context, key Key, expr string, days decimal.Decimal) error {
	res := r.byKey(r.db.WithContext(ctx).Model(&LeaveQuota{}), key).
		UpdateColumns(map[string]any{
			"used":       gorm.Expr(expr, days),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateChange(ctx context.Context, c *LeaveQuotaChange) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) ListChanges(ctx context.Context, quotaID uuid.UUID) ([]LeaveQuotaChange, error) {
	var changes []LeaveQuotaChange
	err := r.db.WithContext(ctx).
		Where("leave_quota_id = ?", quotaID).
		Order("created_at ASC").
		Find(&changes).Error
	return changes, err
}

func (r *repository) byKey(db *gorm.DB, key Key) *gorm.DB {
	return db.
		Where("user_id = ?", key.UserID).
		Where("leave_type_id = ?", key.LeaveTypeID).
		Where("year = ?", key.Year)
}
