package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-oms/internal/actor"
	auditerrors "go-oms/internal/audit/errors"
	"go-oms/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultListLimit = 200

//go:generate mockgen -source=audit_service.go -destination=mock/audit_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, query ListAuditLogsQuery) (ListAuditLogsResponse, error)
	Rollback(ctx context.Context, by actor.Actor, logID string) (RollbackResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	recorder Recorder
	registry *Registry
	maxLimit int
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, registry *Registry, maxLimit int, logger ...*zap.Logger) Service {
	l := zap.L().Named("audit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.service")
	}
	if maxLimit <= 0 {
		maxLimit = DefaultListLimit
	}
	return &service{
		db:       db,
		repo:     repo,
		recorder: NewRecorder(repo),
		registry: registry,
		maxLimit: maxLimit,
		logger:   l,
	}
}

func (s *service) List(ctx context.Context, query ListAuditLogsQuery) (ListAuditLogsResponse, error) {
	filter, err := s.buildFilter(query)
	if err != nil {
		s.logger.Warn("list audit logs invalid filter", zap.Error(err))
		return ListAuditLogsResponse{}, err
	}

	logs, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list audit logs failed", zap.Error(err))
		return ListAuditLogsResponse{}, err
	}

	resp := ListAuditLogsResponse{Logs: make([]AuditLogResponse, len(logs))}
	for i, l := range logs {
		resp.Logs[i] = mapToResponse(l)
	}
	return resp, nil
}

func (s *service) Rollback(ctx context.Context, by actor.Actor, logID string) (RollbackResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("rollback audit log requested",
		zap.String("request_id", rid),
		zap.String("audit_log_id", logID),
		zap.String("actor_id", by.ID.String()),
	)

	id, err := uuid.Parse(logID)
	if err != nil {
		return RollbackResponse{}, auditerrors.ErrInvalidAuditLogID
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RollbackResponse{}, auditerrors.ErrAuditLogNotFound
		}
		s.logger.Error("rollback audit log lookup failed", zap.Error(err))
		return RollbackResponse{}, err
	}

	if entry.Action != ActionUpdate && entry.Action != ActionCreate {
		s.logger.Warn("rollback audit log action not supported",
			zap.String("audit_log_id", logID),
			zap.String("action", string(entry.Action)),
		)
		return RollbackResponse{}, auditerrors.ErrRollbackNotSupported
	}

	restorer, ok := s.registry.Lookup(entry.EntityType)
	if !ok {
		return RollbackResponse{}, auditerrors.ErrUnsupportedEntity
	}

	if !entry.HasOldValue() {
		s.logger.Warn("rollback audit log has no previous state", zap.String("audit_log_id", logID))
		return RollbackResponse{}, auditerrors.ErrNoPreviousState
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("rollback audit log begin tx failed", zap.Error(err))
		return RollbackResponse{}, err
	}
	defer tx.Rollback()

	restored, err := restorer.Restore(ctx, tx, by, entry.EntityID, entry.OldValue)
	if err != nil {
		s.logger.Warn("rollback audit log restore failed",
			zap.String("audit_log_id", logID),
			zap.String("entity_type", string(entry.EntityType)),
			zap.String("entity_id", entry.EntityID.String()),
			zap.Error(err),
		)
		return RollbackResponse{}, err
	}

	if _, err := s.recorder.WithTx(tx).Record(ctx, Entry{
		Action:    ActionRollback,
		Entity:    entry.Ref(),
		ChangedBy: by.UserID(),
		OldValue:  entry.NewValue,
		NewValue:  restored,
		Details:   fmt.Sprintf("Rolled back %s log %s", entry.Action, entry.ID),
	}); err != nil {
		s.logger.Error("rollback audit log persist failed", zap.Error(err))
		return RollbackResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("rollback audit log commit failed", zap.Error(err))
		return RollbackResponse{}, err
	}

	if hook, ok := restorer.(AfterRestorer); ok {
		hook.AfterRestore(ctx, entry.EntityID)
	}

	s.logger.Info("rollback audit log success",
		zap.String("request_id", rid),
		zap.String("audit_log_id", logID),
		zap.String("entity_type", string(entry.EntityType)),
		zap.String("entity_id", entry.EntityID.String()),
	)

	return RollbackResponse{
		Message: "Rollback successful",
		Entity:  restored,
	}, nil
}

func (s *service) buildFilter(q ListAuditLogsQuery) (Filter, error) {
	filter := Filter{Limit: s.maxLimit}
	if q.Limit > 0 && q.Limit < s.maxLimit {
		filter.Limit = q.Limit
	}

	if q.Action != "" {
		action := Action(strings.ToLower(q.Action))
		if !action.Valid() {
			return Filter{}, auditerrors.ErrInvalidFilter.WithCause(fmt.Errorf("action %q", q.Action))
		}
		filter.Action = action
	}
	if q.EntityType != "" {
		kind := EntityKind(q.EntityType)
		if !kind.Valid() {
			return Filter{}, auditerrors.ErrInvalidFilter.WithCause(fmt.Errorf("entityType %q", q.EntityType))
		}
		filter.EntityType = kind
	}
	if q.User != "" {
		id, err := uuid.Parse(q.User)
		if err != nil {
			return Filter{}, auditerrors.ErrInvalidFilter.WithCause(err)
		}
		filter.ChangedBy = &id
	}
	if q.EntityID != "" {
		id, err := uuid.Parse(q.EntityID)
		if err != nil {
			return Filter{}, auditerrors.ErrInvalidFilter.WithCause(err)
		}
		filter.EntityID = &id
	}
	if q.From != "" {
		from, err := parseTime(q.From, false)
		if err != nil {
			return Filter{}, auditerrors.ErrInvalidFilter.WithCause(err)
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := parseTime(q.To, true)
		if err != nil {
			return Filter{}, auditerrors.ErrInvalidFilter.WithCause(err)
		}
		filter.To = &to
	}
	return filter, nil
}

// parseTime accepts YYYY-MM-DD or RFC3339. A bare date used as an upper bound
// covers the whole day.
func parseTime(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		if endOfDay {
			return t.Add(24*time.Hour - time.Nanosecond), nil
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

func mapToResponse(l AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:         l.ID.String(),
		Action:     string(l.Action),
		EntityType: string(l.EntityType),
		EntityID:   l.EntityID.String(),
		Details:    l.Details,
		Timestamp:  l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.ChangedBy != nil {
		v := l.ChangedBy.String()
		resp.ChangedBy = &v
	}
	if hasValue(l.OldValue) {
		resp.OldValue = []byte(l.OldValue)
	}
	if hasValue(l.NewValue) {
		resp.NewValue = []byte(l.NewValue)
	}
	return resp
}
