package leavereport

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatusCount struct {
	Status string
	Count  int64
}

type GroupCount struct {
	ID        uuid.UUID
	Name      string
	Total     int64
	Approved  int64
	Pending   int64
	Rejected  int64
	Cancelled int64
}

//go:generate mockgen -source=leavereport_repo.go -destination=mock/leavereport_repo_mock.go -package=mock
type Repository interface {
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	GroupByType(ctx context.Context) ([]GroupCount, error)
	GroupByUser(ctx context.Context) ([]GroupCount, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const groupColumns = `COUNT(*) AS total,
	SUM(CASE WHEN lr.status = 'approved' THEN 1 ELSE 0 END) AS approved,
	SUM(CASE WHEN lr.status = 'pending' THEN 1 ELSE 0 END) AS pending,
	SUM(CASE WHEN lr.status = 'rejected' THEN 1 ELSE 0 END) AS rejected,
	SUM(CASE WHEN lr.status = 'cancelled' THEN 1 ELSE 0 END) AS cancelled`

func (r *repository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Table("leave_requests").
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) GroupByType(ctx context.Context) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.db.WithContext(ctx).
		Table("leave_requests AS lr").
		Select("lr.leave_type_id AS id, COALESCE(lt.name, '') AS name, " + groupColumns).
		Joins("LEFT JOIN leave_types lt ON lt.id = lr.leave_type_id").
		Group("lr.leave_type_id, lt.name").
		Order("total DESC, name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) GroupByUser(ctx context.Context) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.db.WithContext(ctx).
		Table("leave_requests AS lr").
		Select("lr.user_id AS id, COALESCE(u.name, '') AS name, " + groupColumns).
		Joins("LEFT JOIN users u ON u.id = lr.user_id").
		Group("lr.user_id, u.name").
		Order("total DESC, name ASC").
		Scan(&rows).Error
	return rows, err
}
