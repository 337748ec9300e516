package audit

import (
	"context"
	"database/sql"
	"time"

	"go-oms/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Filter struct {
	Action     Action
	EntityType EntityKind
	ChangedBy  *uuid.UUID
	EntityID   *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
}

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *AuditLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*AuditLog, error)
	List(ctx context.Context, filter Filter) ([]AuditLog, error)
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

func (r *repository) Create(ctx context.Context, l *AuditLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*AuditLog, error) {
	var l AuditLog
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) List(ctx context.Context, filter Filter) ([]AuditLog, error) {
	db := r.db.WithContext(ctx).Model(&AuditLog{})

	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		db = db.Where("entity_type = ?", filter.EntityType)
	}
	if filter.ChangedBy != nil {
		db = db.Where("changed_by = ?", *filter.ChangedBy)
	}
	if filter.EntityID != nil {
		db = db.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.From != nil {
		db = db.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("created_at <= ?", *filter.To)
	}

	var logs []AuditLog
	err := db.Order("created_at DESC").Limit(filter.Limit).Find(&logs).Error
	return logs, err
}
