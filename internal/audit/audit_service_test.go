package audit_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-oms/internal/actor"
	"go-oms/internal/audit"
	auditerrors "go-oms/internal/audit/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeAuditRepository struct {
	findByIDFn func(ctx context.Context, id uuid.UUID) (*audit.AuditLog, error)
	listFn     func(ctx context.Context, filter audit.Filter) ([]audit.AuditLog, error)
	created    []audit.AuditLog
	createErr  error
}

func (f *fakeAuditRepository) WithTx(tx *sql.Tx) audit.Repository {
	return f
}

func (f *fakeAuditRepository) Create(ctx context.Context, l *audit.AuditLog) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *l)
	return nil
}

func (f *fakeAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.AuditLog, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuditRepository) List(ctx context.Context, filter audit.Filter) ([]audit.AuditLog, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, nil
}

type fakeRestorer struct {
	restoreFn    func(ctx context.Context, tx *sql.Tx, by actor.Actor, id uuid.UUID, snapshot []byte) (any, error)
	afterRestore []uuid.UUID
}

func (f *fakeRestorer) Restore(ctx context.Context, tx *sql.Tx, by actor.Actor, id uuid.UUID, snapshot []byte) (any, error) {
	return f.restoreFn(ctx, tx, by, id, snapshot)
}

func (f *fakeRestorer) AfterRestore(ctx context.Context, id uuid.UUID) {
	f.afterRestore = append(f.afterRestore, id)
}

type auditServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	repo     *fakeAuditRepository
	restorer *fakeRestorer
	service  audit.Service
}

func setupAuditServiceTest(t *testing.T) *auditServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeAuditRepository{}
	restorer := &fakeRestorer{}
	registry := audit.NewRegistry()
	registry.Register(audit.KindLeaveQuota, restorer)

	return &auditServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		repo:     repo,
		restorer: restorer,
		service:  audit.NewService(db, repo, registry, 200),
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

type quotaState struct {
	Allocated   float64 `json:"allocated"`
	CarriedOver float64 `json:"carriedOver"`
	Used        float64 `json:"used"`
}

func TestAuditService_Rollback(t *testing.T) {
	ctx := context.Background()
	admin := actor.New(uuid.New(), actor.RoleAdmin)
	quotaID := uuid.New()

	oldValue, _ := json.Marshal(quotaState{Allocated: 21, Used: 0})
	newValue, _ := json.Marshal(quotaState{Allocated: 25, Used: 2})

	updateLog := func() *audit.AuditLog {
		return &audit.AuditLog{
			ID:         uuid.New(),
			Action:     audit.ActionUpdate,
			EntityType: audit.KindLeaveQuota,
			EntityID:   quotaID,
			ChangedBy:  admin.UserID(),
			OldValue:   datatypes.JSON(oldValue),
			NewValue:   datatypes.JSON(newValue),
			CreatedAt:  time.Now().UTC(),
		}
	}

	t.Run("success restores old value and records rollback", func(t *testing.T) {
		deps := setupAuditServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		entry := updateLog()
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID) (*audit.AuditLog, error) {
			assert.Equal(t, entry.ID, id)
			return entry, nil
		}
		restored := quotaState{Allocated: 21, Used: 0}
		deps.restorer.restoreFn = func(ctx context.Context, tx *sql.Tx, by actor.Actor, id uuid.UUID, snapshot []byte) (any, error) {
			assert.NotNil(t, tx)
			assert.Equal(t, admin, by)
			assert.Equal(t, quotaID, id)
			assert.JSONEq(t, string(oldValue), string(snapshot))
			return restored, nil
		}

		resp, err := deps.service.Rollback(ctx, admin, entry.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, "Rollback successful", resp.Message)
		assert.Equal(t, restored, resp.Entity)

		assert.Len(t, deps.repo.created, 1)
		rollback := deps.repo.created[0]
		assert.Equal(t, audit.ActionRollback, rollback.Action)
		assert.Equal(t, audit.KindLeaveQuota, rollback.EntityType)
		assert.Equal(t, quotaID, rollback.EntityID)
		assert.Equal(t, admin.ID, *rollback.ChangedBy)
		assert.JSONEq(t, string(newValue), string(rollback.OldValue))
		assert.JSONEq(t, string(oldValue), string(rollback.NewValue))

		assert.Equal(t, []uuid.UUID{quotaID}, deps.restorer.afterRestore)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative create log without previous state", func(t *testing.T) {
		deps := setupAuditServiceTest(t)
		defer deps.db.Close()

		entry := updateLog()
		entry.Action = audit.ActionCreate
		entry.OldValue = nil
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID) (*audit.AuditLog, error) {
			return entry, nil
		}

		_, err := deps.service.Rollback(ctx, admin, entry.ID.String())

		assert.ErrorIs(t, err, auditerrors.ErrNoPreviousState)
		assert.Empty(t, deps.repo.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative reset log cannot be rolled back", func(t *testing.T) {
		deps := setupAuditServiceTest(t)
		defer deps.db.Close()

		entry := updateLog()
		entry.Action = audit.ActionReset
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID) (*audit.AuditLog, error) {
			return entry, nil
		}

		_, err := deps.service.Rollback(ctx, admin, entry.ID.String())

		assert.ErrorIs(t, err, auditerrors.ErrRollbackNotSupported)
	})

	t.Run("negative entity kind without restorer", func(t *testing.T) {
		deps := setupAuditServiceTest(t)
		defer deps.db.Close()

		entry := updateLog()
		entry.EntityType = audit.KindLeaveType
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID) (*audit.AuditLog, error) {
			return entry, nil
		}

		_, err := deps.service.Rollback(ctx, admin, entry.ID.String())

		assert.ErrorIs(t, err, auditerrors.ErrUnsupportedEntity)
	})

	t.Run("negative log not found", func(t *testing.T) {
		deps := setupAuditServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Rollback(ctx, admin, uuid.NewString())

		assert.ErrorIs(t, err, auditerrors.ErrAuditLogNotFound)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupAuditServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Rollback(ctx, admin, "not-a-uuid")

		assert.ErrorIs(t, err, auditerrors.ErrInvalidAuditLogID)
	})

	t.Run("negative restore failure rolls back", func(t *testing.T) {
		deps := setupAuditServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		entry := updateLog()
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID) (*audit.AuditLog, error) {
			return entry, nil
		}
		deps.restorer.restoreFn = func(ctx context.Context, tx *sql.Tx, by actor.Actor, id uuid.UUID, snapshot []byte) (any, error) {
			return nil, errors.New("quota vanished")
		}

		_, err := deps.service.Rollback(ctx, admin, entry.ID.String())

		assert.Error(t, err)
		assert.Empty(t, deps.repo.created)
		assert.Empty(t, deps.restorer.afterRestore)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestAuditService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success builds filter and caps limit", func(t *testing.T) {
		deps := setupAuditServiceTest(t)
		defer deps.db.Close()

		userID := uuid.New()
		logID := uuid.New()
		deps.repo.listFn = func(ctx context.Context, filter audit.Filter) ([]audit.AuditLog, error) {
			assert.Equal(t, 200, filter.Limit)
			assert.Equal(t, audit.ActionUpdate, filter.Action)
			assert.Equal(t, audit.KindLeaveQuota, filter.EntityType)
			assert.Equal(t, userID, *filter.ChangedBy)
			assert.Equal(t, "2026-01-01T00:00:00Z", filter.From.Format(time.RFC3339))
			assert.Equal(t, "2026-01-31T23:59:59Z", filter.To.Format(time.RFC3339))
			return []audit.AuditLog{{
				ID:         logID,
				Action:     audit.ActionUpdate,
				EntityType: audit.KindLeaveQuota,
				EntityID:   uuid.New(),
				ChangedBy:  &userID,
				NewValue:   datatypes.JSON(`{"used":1}`),
				CreatedAt:  time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
			}}, nil
		}

		resp, err := deps.service.List(ctx, audit.ListAuditLogsQuery{
			Action:     "update",
			EntityType: "LeaveQuota",
			User:       userID.String(),
			From:       "2026-01-01",
			To:         "2026-01-31",
			Limit:      5000,
		})

		assert.NoError(t, err)
		assert.Len(t, resp.Logs, 1)
		assert.Equal(t, logID.String(), resp.Logs[0].ID)
		assert.Equal(t, "2026-01-05T09:00:00Z", resp.Logs[0].Timestamp)
		assert.Nil(t, resp.Logs[0].OldValue)
		assert.JSONEq(t, `{"used":1}`, string(resp.Logs[0].NewValue))
	})

	t.Run("negative unknown action", func(t *testing.T) {
		deps := setupAuditServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.List(ctx, audit.ListAuditLogsQuery{Action: "purge"})

		assert.ErrorIs(t, err, auditerrors.ErrInvalidFilter)
	})

	t.Run("negative bad date", func(t *testing.T) {
		deps := setupAuditServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.List(ctx, audit.ListAuditLogsQuery{From: "yesterday"})

		assert.ErrorIs(t, err, auditerrors.ErrInvalidFilter)
	})
}

func TestRecorder_Record(t *testing.T) {
	repo := &fakeAuditRepository{}
	rec := audit.NewRecorder(repo)
	quotaID := uuid.New()

	l, err := rec.Record(context.Background(), audit.Entry{
		Action:   audit.ActionReset,
		Entity:   audit.QuotaRef(quotaID),
		NewValue: quotaState{Allocated: 20, CarriedOver: 5},
		Details:  "Yearly reset 2026",
	})

	assert.NoError(t, err)
	assert.Nil(t, l.ChangedBy)
	assert.Nil(t, l.OldValue)
	assert.JSONEq(t, `{"allocated":20,"carriedOver":5,"used":0}`, string(l.NewValue))
	assert.Equal(t, audit.KindLeaveQuota, l.EntityType)
	assert.Len(t, repo.created, 1)
}
