package leaverequest

import (
	"context"
	"database/sql"
	"time"

	"go-oms/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows request listings. A nil UserIDs means any user; an empty one matches nothing.
type Filter struct {
	Status      string
	UserIDs     []uuid.UUID
	LeaveTypeID *uuid.UUID
	StartFrom   *time.Time
	EndTo       *time.Time
	Offset      int
	Limit       int
}

//go:generate mockgen -source=leaverequest_repo.go -destination=mock/leaverequest_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *LeaveRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	Update(ctx context.Context, r *LeaveRequest) error
	AddComment(ctx context.Context, c *Comment) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]LeaveRequest, error)
	List(ctx context.Context, filter Filter) ([]LeaveRequest, int64, error)
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

func (r *repository) Create(ctx context.Context, lr *LeaveRequest) error {
	return r.db.WithContext(ctx).Omit("Comments").Create(lr).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Comments", orderComments).
		First(&lr, "id = ?", id).Error
	return &lr, err
}

// FindByIDForUpdate locks the request row until the surrounding transaction ends.
// Only meaningful on a repository bound with WithTx.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Comments", orderComments).
		First(&lr, "id = ?", id).Error
	return &lr, err
}

func (r *repository) Update(ctx context.Context, lr *LeaveRequest) error {
	return r.db.WithContext(ctx).Omit("Comments").Save(lr).Error
}

func (r *repository) AddComment(ctx context.Context, c *Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Comments", orderComments).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) List(ctx context.Context, filter Filter) ([]LeaveRequest, int64, error) {
	requests := []LeaveRequest{}
	if filter.UserIDs != nil && len(filter.UserIDs) == 0 {
		return requests, 0, nil
	}

	q := r.db.WithContext(ctx).Model(&LeaveRequest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserIDs != nil {
		q = q.Where("user_id IN ?", filter.UserIDs)
	}
	if filter.LeaveTypeID != nil {
		q = q.Where("leave_type_id = ?", *filter.LeaveTypeID)
	}
	if filter.StartFrom != nil {
		q = q.Where("start_date >= ?", *filter.StartFrom)
	}
	if filter.EndTo != nil {
		q = q.Where("end_date <= ?", *filter.EndTo)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Comments", orderComments).
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&requests).Error
	return requests, total, err
}

func orderComments(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
