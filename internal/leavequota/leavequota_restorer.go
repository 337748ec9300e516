package leavequota

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go-oms/internal/actor"
	leavequotaerrors "go-oms/internal/leavequota/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Restorer writes an audited quota snapshot back onto the live row and
// appends a rollback entry to the change history.
type Restorer struct {
	repo   Repository
	logger *zap.Logger
}

func NewRestorer(repo Repository, logger ...*zap.Logger) *Restorer {
	l := zap.L().Named("leavequota.restorer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavequota.restorer")
	}
	return &Restorer{repo: repo, logger: l}
}

func (r *Restorer) Restore(ctx context.Context, tx *sql.Tx, by actor.Actor, id uuid.UUID, snapshot []byte) (any, error) {
	var snap Snapshot
	if err := json.Unmarshal(snapshot, &snap); err != nil {
		r.logger.Warn("restore quota decode snapshot failed", zap.String("leave_quota_id", id.String()), zap.Error(err))
		return nil, leavequotaerrors.ErrInvalidSnapshot
	}
	if snap.UserID == uuid.Nil || snap.LeaveTypeID == uuid.Nil {
		return nil, leavequotaerrors.ErrInvalidSnapshot
	}

	qtx := r.repo.WithTx(tx)
	q, err := qtx.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	before := q.Snapshot()

	now := time.Now().UTC()
	snap.applyTo(q)
	q.UpdatedAt = now
	if err := qtx.Update(ctx, q); err != nil {
		r.logger.Error("restore quota persist failed", zap.String("leave_quota_id", id.String()), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	after := q.Snapshot()
	change, err := newChange(q.ID, by.UserID(), ChangeFieldRollback, before, after, now)
	if err != nil {
		return nil, err
	}
	if err := qtx.CreateChange(ctx, change); err != nil {
		return nil, err
	}

	r.logger.Info("restore quota success",
		zap.String("leave_quota_id", id.String()),
		zap.String("actor_id", by.ID.String()),
	)
	return after, nil
}
