package leavetype

import (
	"context"
	"database/sql"
	"encoding/json"

	"go-oms/internal/actor"
	leavetypeerrors "go-oms/internal/leavetype/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Restorer writes an audited leave type snapshot back onto the live row.
type Restorer struct {
	repo   Repository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRestorer(repo Repository, rdb *redis.Client, logger ...*zap.Logger) *Restorer {
	l := zap.L().Named("leavetype.restorer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.restorer")
	}
	return &Restorer{repo: repo, rdb: rdb, logger: l}
}

func (r *Restorer) Restore(ctx context.Context, tx *sql.Tx, by actor.Actor, id uuid.UUID, snapshot []byte) (any, error) {
	var snap Snapshot
	if err := json.Unmarshal(snapshot, &snap); err != nil {
		r.logger.Warn("restore leave type decode snapshot failed", zap.String("leave_type_id", id.String()), zap.Error(err))
		return nil, leavetypeerrors.ErrInvalidSnapshot
	}

	qtx := r.repo.WithTx(tx)
	t, err := qtx.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if snap.Name != t.Name {
		exists, err := qtx.ExistsByName(ctx, snap.Name, t.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, leavetypeerrors.ErrLeaveTypeNameExists
		}
	}

	snap.applyTo(t)
	if err := qtx.Update(ctx, t); err != nil {
		r.logger.Error("restore leave type persist failed", zap.String("leave_type_id", id.String()), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	r.logger.Info("restore leave type success",
		zap.String("leave_type_id", id.String()),
		zap.String("actor_id", by.ID.String()),
	)
	return t.Snapshot(), nil
}

func (r *Restorer) AfterRestore(ctx context.Context, id uuid.UUID) {
	invalidateActiveCache(ctx, r.rdb, r.logger)
}
