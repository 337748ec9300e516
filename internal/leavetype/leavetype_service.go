package leavetype

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"go-oms/internal/actor"
	"go-oms/internal/audit"
	leavetypeerrors "go-oms/internal/leavetype/errors"
	"go-oms/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheTTL = time.Hour

// QuotaSeeder provisions current-year quotas for a newly created leave type.
type QuotaSeeder interface {
	SeedForType(ctx context.Context, t LeaveType, year int) (int, error)
}

//go:generate mockgen -source=leavetype_service.go -destination=mock/leavetype_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, by actor.Actor, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	Update(ctx context.Context, by actor.Actor, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, by actor.Actor, id string) error
	List(ctx context.Context, activeOnly bool) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, id string) (LeaveTypeResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	recorder audit.Recorder
	seeder   QuotaSeeder
	rdb      *redis.Client
	cacheTTL time.Duration
	sf       *singleflight.Group
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	recorder audit.Recorder,
	seeder QuotaSeeder,
	rdb *redis.Client,
	cacheTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &service{
		db:       db,
		repo:     repo,
		recorder: recorder,
		seeder:   seeder,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		sf:       &singleflight.Group{},
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, by actor.Actor, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	name := strings.TrimSpace(req.Name)
	s.logger.Debug("create leave type requested",
		zap.String("request_id", rid),
		zap.String("actor_id", by.ID.String()),
		zap.String("name", name),
	)

	if name == "" {
		return LeaveTypeResponse{}, leavetypeerrors.ErrNameRequired
	}
	if req.DefaultDays < 0 || (req.MaxCarryover != nil && *req.MaxCarryover < 0) {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidDays
	}
	if !validExpiry(req.CarryoverExpiry) {
		s.logger.Warn("create leave type invalid carryover expiry", zap.String("carryover_expiry", req.CarryoverExpiry))
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidCarryoverExpiry
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave type begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	exists, err := qtx.ExistsActiveByName(ctx, name)
	if err != nil {
		s.logger.Error("create leave type name check failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	if exists {
		s.logger.Warn("create leave type name conflict", zap.String("name", name))
		return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNameExists
	}

	now := s.now()
	t := &LeaveType{
		ID:              uuid.New(),
		Name:            name,
		Description:     req.Description,
		DefaultQuota:    decimal.NewFromFloat(req.DefaultDays),
		MaxCarryover:    decimal.Zero,
		CarryoverExpiry: req.CarryoverExpiry,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.MaxCarryover != nil {
		t.MaxCarryover = decimal.NewFromFloat(*req.MaxCarryover)
	}

	if err := qtx.Create(ctx, t); err != nil {
		s.logger.Error("create leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	if _, err := s.recorder.WithTx(tx).Record(ctx, audit.Entry{
		Action:    audit.ActionCreate,
		Entity:    audit.TypeRef(t.ID),
		ChangedBy: by.UserID(),
		NewValue:  t.Snapshot(),
		Details:   "Created leave type " + t.Name,
	}); err != nil {
		s.logger.Error("create leave type audit failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave type commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	invalidateActiveCache(ctx, s.rdb, s.logger)

	if s.seeder != nil {
		year := now.Year()
		seeded, err := s.seeder.SeedForType(ctx, *t, year)
		if err != nil {
			s.logger.Warn("create leave type quota seeding failed",
				zap.String("leave_type_id", t.ID.String()),
				zap.Int("year", year),
				zap.Int("seeded", seeded),
				zap.Error(err),
			)
		} else {
			s.logger.Info("create leave type quotas seeded",
				zap.String("leave_type_id", t.ID.String()),
				zap.Int("year", year),
				zap.Int("seeded", seeded),
			)
		}
	}

	s.logger.Info("create leave type success",
		zap.String("request_id", rid),
		zap.String("leave_type_id", t.ID.String()),
	)
	return mapToResponse(*t), nil
}

func (s *service) Update(ctx context.Context, by actor.Actor, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update leave type requested",
		zap.String("request_id", rid),
		zap.String("actor_id", by.ID.String()),
		zap.String("leave_type_id", id),
	)

	typeID, err := uuid.Parse(id)
	if err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}
	if (req.DefaultDays != nil && *req.DefaultDays < 0) || (req.MaxCarryover != nil && *req.MaxCarryover < 0) {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidDays
	}
	if req.CarryoverExpiry != nil && !validExpiry(*req.CarryoverExpiry) {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidCarryoverExpiry
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave type begin tx failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	t, err := qtx.FindByID(ctx, typeID)
	if err != nil {
		s.logger.Warn("update leave type fetch existing failed", zap.String("leave_type_id", id), zap.Error(err))
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}
	before := t.Snapshot()

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return LeaveTypeResponse{}, leavetypeerrors.ErrNameRequired
		}
		if name != t.Name {
			// Renames collide with inactive types too.
			exists, err := qtx.ExistsByName(ctx, name, t.ID)
			if err != nil {
				s.logger.Error("update leave type name check failed", zap.Error(err))
				return LeaveTypeResponse{}, err
			}
			if exists {
				s.logger.Warn("update leave type name conflict", zap.String("name", name))
				return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNameExists
			}
			t.Name = name
		}
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if req.DefaultDays != nil {
		t.DefaultQuota = decimal.NewFromFloat(*req.DefaultDays)
	}
	if req.MaxCarryover != nil {
		t.MaxCarryover = decimal.NewFromFloat(*req.MaxCarryover)
	}
	if req.CarryoverExpiry != nil {
		t.CarryoverExpiry = *req.CarryoverExpiry
	}
	t.UpdatedAt = s.now()

	if err := qtx.Update(ctx, t); err != nil {
		s.logger.Error("update leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	if _, err := s.recorder.WithTx(tx).Record(ctx, audit.Entry{
		Action:    audit.ActionUpdate,
		Entity:    audit.TypeRef(t.ID),
		ChangedBy: by.UserID(),
		OldValue:  before,
		NewValue:  t.Snapshot(),
		Details:   "Updated leave type " + t.Name,
	}); err != nil {
		s.logger.Error("update leave type audit failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave type commit failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	invalidateActiveCache(ctx, s.rdb, s.logger)

	s.logger.Info("update leave type success", zap.String("request_id", rid), zap.String("leave_type_id", id))
	return mapToResponse(*t), nil
}

func (s *service) Delete(ctx context.Context, by actor.Actor, id string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete leave type requested",
		zap.String("request_id", rid),
		zap.String("actor_id", by.ID.String()),
		zap.String("leave_type_id", id),
	)

	typeID, err := uuid.Parse(id)
	if err != nil {
		return leavetypeerrors.ErrInvalidLeaveTypeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete leave type begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	t, err := qtx.FindByID(ctx, typeID)
	if err != nil {
		s.logger.Warn("delete leave type fetch existing failed", zap.String("leave_type_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}
	before := t.Snapshot()

	t.IsActive = false
	t.UpdatedAt = s.now()
	if err := qtx.Update(ctx, t); err != nil {
		s.logger.Error("delete leave type persist failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if _, err := s.recorder.WithTx(tx).Record(ctx, audit.Entry{
		Action:    audit.ActionDelete,
		Entity:    audit.TypeRef(t.ID),
		ChangedBy: by.UserID(),
		OldValue:  before,
		NewValue:  t.Snapshot(),
		Details:   "Deactivated leave type " + t.Name,
	}); err != nil {
		s.logger.Error("delete leave type audit failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete leave type commit failed", zap.Error(err))
		return err
	}

	invalidateActiveCache(ctx, s.rdb, s.logger)

	s.logger.Info("delete leave type success", zap.String("request_id", rid), zap.String("leave_type_id", id))
	return nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]LeaveTypeResponse, error) {
	s.logger.Debug("list leave types requested", zap.Bool("active_only", activeOnly))

	if !activeOnly {
		types, err := s.repo.List(ctx, false)
		if err != nil {
			s.logger.Error("list leave types failed", zap.Error(err))
			return nil, mapRepositoryError(err)
		}
		return mapToListResponse(types), nil
	}

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, ActiveTypesCacheKey).Result(); err == nil {
			var resp []LeaveTypeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(ActiveTypesCacheKey, func() (interface{}, error) {
		types, err := s.repo.List(ctx, true)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(types)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, ActiveTypesCacheKey, jsonData, s.cacheTTL).Err(); err != nil {
					s.logger.Warn("cache leave types failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		s.logger.Error("list active leave types failed", zap.Error(err))
		return nil, err
	}

	return v.([]LeaveTypeResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveTypeResponse, error) {
	s.logger.Debug("get leave type by id requested", zap.String("leave_type_id", id))

	typeID, err := uuid.Parse(id)
	if err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}

	t, err := s.repo.FindByID(ctx, typeID)
	if err != nil {
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*t), nil
}

// validExpiry accepts an empty value or a calendar MM-DD.
func validExpiry(v string) bool {
	if v == "" {
		return true
	}
	if len(v) != 5 {
		return false
	}
	_, err := time.Parse("01-02", v)
	return err == nil
}

func mapToResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:              t.ID.String(),
		Name:            t.Name,
		Description:     t.Description,
		DefaultQuota:    t.DefaultQuota.InexactFloat64(),
		MaxCarryover:    t.MaxCarryover.InexactFloat64(),
		CarryoverExpiry: t.CarryoverExpiry,
		IsActive:        t.IsActive,
		CreatedAt:       t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(types []LeaveType) []LeaveTypeResponse {
	resp := make([]LeaveTypeResponse, len(types))
	for i, t := range types {
		resp[i] = mapToResponse(t)
	}
	return resp
}
