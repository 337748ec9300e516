package leavetype_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-oms/internal/actor"
	"go-oms/internal/audit"
	"go-oms/internal/leavetype"
	leavetypeerrors "go-oms/internal/leavetype/errors"
	leavetypeMock "go-oms/internal/leavetype/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeRecorder struct {
	entries []audit.Entry
	err     error
}

func (f *fakeRecorder) WithTx(tx *sql.Tx) audit.Recorder {
	return f
}

func (f *fakeRecorder) Record(ctx context.Context, entry audit.Entry) (*audit.AuditLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.entries = append(f.entries, entry)
	return &audit.AuditLog{ID: uuid.New(), Action: entry.Action}, nil
}

type fakeSeeder struct {
	calls []int
	err   error
}

func (f *fakeSeeder) SeedForType(ctx context.Context, t leavetype.LeaveType, year int) (int, error) {
	f.calls = append(f.calls, year)
	return 3, f.err
}

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	repo      *leavetypeMock.MockRepository
	recorder  *fakeRecorder
	seeder    *fakeSeeder
	redismock redismock.ClientMock
	service   leavetype.Service
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	ctrl := gomock.NewController(t)
	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	rdb, redisMock := redismock.NewClientMock()

	repo := leavetypeMock.NewMockRepository(ctrl)
	recorder := &fakeRecorder{}
	seeder := &fakeSeeder{}

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		repo:      repo,
		recorder:  recorder,
		seeder:    seeder,
		redismock: redisMock,
		service:   leavetype.NewService(db, repo, recorder, seeder, rdb, time.Hour),
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

func TestLeaveTypeService_Create(t *testing.T) {
	ctx := context.Background()
	hr := actor.New(uuid.New(), actor.RoleHR)

	t.Run("success creates type, audits and seeds quotas", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().ExistsActiveByName(ctx, "Annual Leave").Return(false, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, lt *leavetype.LeaveType) error {
			assert.NotEqual(t, uuid.Nil, lt.ID)
			assert.True(t, lt.IsActive)
			assert.True(t, decimal.NewFromInt(21).Equal(lt.DefaultQuota))
			assert.True(t, decimal.NewFromInt(5).Equal(lt.MaxCarryover))
			return nil
		})
		deps.redismock.ExpectDel(leavetype.ActiveTypesCacheKey).SetVal(1)

		carry := 5.0
		resp, err := deps.service.Create(ctx, hr, leavetype.CreateLeaveTypeRequest{
			Name:            "  Annual Leave ",
			Description:     "Paid annual leave",
			DefaultDays:     21,
			MaxCarryover:    &carry,
			CarryoverExpiry: "03-31",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Annual Leave", resp.Name)
		assert.Equal(t, 21.0, resp.DefaultQuota)
		assert.True(t, resp.IsActive)

		assert.Len(t, deps.recorder.entries, 1)
		entry := deps.recorder.entries[0]
		assert.Equal(t, audit.ActionCreate, entry.Action)
		assert.Equal(t, audit.KindLeaveType, entry.Entity.Kind)
		assert.Nil(t, entry.OldValue)
		assert.Equal(t, hr.ID, *entry.ChangedBy)

		assert.Equal(t, []int{time.Now().UTC().Year()}, deps.seeder.calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("success when seeding fails", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)
		deps.seeder.err = errors.New("users table locked")

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().ExistsActiveByName(ctx, "Sick").Return(false, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.redismock.ExpectDel(leavetype.ActiveTypesCacheKey).SetVal(1)

		resp, err := deps.service.Create(ctx, hr, leavetype.CreateLeaveTypeRequest{Name: "Sick", DefaultDays: 10})

		assert.NoError(t, err)
		assert.Equal(t, "Sick", resp.Name)
		assert.Len(t, deps.seeder.calls, 1)
	})

	t.Run("negative active name already exists", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().ExistsActiveByName(ctx, "Annual Leave").Return(true, nil)

		_, err := deps.service.Create(ctx, hr, leavetype.CreateLeaveTypeRequest{Name: "Annual Leave", DefaultDays: 21})

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNameExists)
		assert.Empty(t, deps.recorder.entries)
		assert.Empty(t, deps.seeder.calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid carryover expiry", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, hr, leavetype.CreateLeaveTypeRequest{Name: "Annual", CarryoverExpiry: "31-03"})

		assert.ErrorIs(t, err, leavetypeerrors.ErrInvalidCarryoverExpiry)
	})
}

func TestLeaveTypeService_Update(t *testing.T) {
	ctx := context.Background()
	hr := actor.New(uuid.New(), actor.RoleHR)

	existing := func() *leavetype.LeaveType {
		return &leavetype.LeaveType{
			ID:           uuid.New(),
			Name:         "Annual",
			DefaultQuota: decimal.NewFromInt(20),
			MaxCarryover: decimal.NewFromInt(5),
			IsActive:     true,
		}
	}

	t.Run("success renames and records old and new snapshots", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		lt := existing()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, lt.ID).Return(lt, nil)
		deps.repo.EXPECT().ExistsByName(ctx, "Annual Leave", lt.ID).Return(false, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		deps.redismock.ExpectDel(leavetype.ActiveTypesCacheKey).SetVal(1)

		name := "Annual Leave"
		days := 22.0
		resp, err := deps.service.Update(ctx, hr, lt.ID.String(), leavetype.UpdateLeaveTypeRequest{Name: &name, DefaultDays: &days})

		assert.NoError(t, err)
		assert.Equal(t, "Annual Leave", resp.Name)
		assert.Equal(t, 22.0, resp.DefaultQuota)

		assert.Len(t, deps.recorder.entries, 1)
		entry := deps.recorder.entries[0]
		assert.Equal(t, audit.ActionUpdate, entry.Action)
		before := entry.OldValue.(leavetype.Snapshot)
		after := entry.NewValue.(leavetype.Snapshot)
		assert.Equal(t, "Annual", before.Name)
		assert.Equal(t, "Annual Leave", after.Name)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("negative rename collides with inactive type", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		lt := existing()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, lt.ID).Return(lt, nil)
		// Global check: an inactive "Legacy" still blocks the rename.
		deps.repo.EXPECT().ExistsByName(ctx, "Legacy", lt.ID).Return(true, nil)

		name := "Legacy"
		_, err := deps.service.Update(ctx, hr, lt.ID.String(), leavetype.UpdateLeaveTypeRequest{Name: &name})

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNameExists)
		assert.Empty(t, deps.recorder.entries)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		id := uuid.New()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, hr, id.String(), leavetype.UpdateLeaveTypeRequest{})

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Update(ctx, hr, "abc", leavetype.UpdateLeaveTypeRequest{})

		assert.ErrorIs(t, err, leavetypeerrors.ErrInvalidLeaveTypeID)
	})
}

func TestLeaveTypeService_Delete(t *testing.T) {
	ctx := context.Background()
	admin := actor.New(uuid.New(), actor.RoleAdmin)

	t.Run("success soft deletes", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		lt := &leavetype.LeaveType{ID: uuid.New(), Name: "Annual", IsActive: true}
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, lt.ID).Return(lt, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, got *leavetype.LeaveType) error {
			assert.False(t, got.IsActive)
			return nil
		})
		deps.redismock.ExpectDel(leavetype.ActiveTypesCacheKey).SetVal(1)

		err := deps.service.Delete(ctx, admin, lt.ID.String())

		assert.NoError(t, err)
		assert.Len(t, deps.recorder.entries, 1)
		assert.Equal(t, audit.ActionDelete, deps.recorder.entries[0].Action)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveTypeService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns cached active types", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		cached := []leavetype.LeaveTypeResponse{{ID: uuid.NewString(), Name: "Annual", IsActive: true}}
		jsonResp, _ := json.Marshal(cached)
		deps.redismock.ExpectGet(leavetype.ActiveTypesCacheKey).SetVal(string(jsonResp))

		resp, err := deps.service.List(ctx, true)

		assert.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("success cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		types := []leavetype.LeaveType{{ID: uuid.New(), Name: "Annual", DefaultQuota: decimal.NewFromInt(21), IsActive: true, CreatedAt: created, UpdatedAt: created}}
		deps.redismock.ExpectGet(leavetype.ActiveTypesCacheKey).RedisNil()
		deps.repo.EXPECT().List(ctx, true).Return(types, nil)

		expected := []leavetype.LeaveTypeResponse{{
			ID:           types[0].ID.String(),
			Name:         "Annual",
			DefaultQuota: 21,
			IsActive:     true,
			CreatedAt:    "2026-01-02T03:04:05Z",
			UpdatedAt:    "2026-01-02T03:04:05Z",
		}}
		jsonResp, _ := json.Marshal(expected)
		deps.redismock.ExpectSet(leavetype.ActiveTypesCacheKey, jsonResp, time.Hour).SetVal("OK")

		resp, err := deps.service.List(ctx, true)

		assert.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("success all types bypasses cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().List(ctx, false).Return([]leavetype.LeaveType{
			{ID: uuid.New(), Name: "Annual", IsActive: true},
			{ID: uuid.New(), Name: "Legacy", IsActive: false},
		}, nil)

		resp, err := deps.service.List(ctx, false)

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("negative repository error", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(leavetype.ActiveTypesCacheKey).RedisNil()
		deps.repo.EXPECT().List(ctx, true).Return(nil, errors.New("db down"))

		_, err := deps.service.List(ctx, true)

		assert.Error(t, err)
	})
}
