package leavequota_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"go-oms/internal/actor"
	"go-oms/internal/audit"
	"go-oms/internal/leavequota"
	leavequotaerrors "go-oms/internal/leavequota/errors"
	"go-oms/internal/leavetype"
	leavetypeerrors "go-oms/internal/leavetype/errors"
	"go-oms/internal/user"
	usererrors "go-oms/internal/user/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type ledgerFixture struct {
	db        *gorm.DB
	sqlDB     *sql.DB
	repo      leavequota.Repository
	auditRepo audit.Repository
	service   leavequota.Service
}

func setupLedger(t *testing.T) *ledgerFixture {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&user.User{},
		&leavetype.LeaveType{},
		&leavequota.LeaveQuota{},
		&leavequota.LeaveQuotaChange{},
		&audit.AuditLog{},
	))

	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := leavequota.NewRepository(db)
	auditRepo := audit.NewRepository(db)
	svc := leavequota.NewService(
		sqlDB,
		repo,
		leavetype.NewRepository(db),
		user.NewRepository(db),
		audit.NewRecorder(auditRepo),
	)

	return &ledgerFixture{db: db, sqlDB: sqlDB, repo: repo, auditRepo: auditRepo, service: svc}
}

func (f *ledgerFixture) addUser(t *testing.T, name string, role actor.Role) user.User {
	t.Helper()
	u := user.User{ID: uuid.New(), Name: name, Email: strings.ToLower(name) + "@oms.test", Role: role, Status: user.StatusActive}
	assert.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *ledgerFixture) addType(t *testing.T, name string, defaultQuota, maxCarryover int64, active bool) leavetype.LeaveType {
	t.Helper()
	lt := leavetype.LeaveType{
		ID:           uuid.New(),
		Name:         name,
		DefaultQuota: decimal.NewFromInt(defaultQuota),
		MaxCarryover: decimal.NewFromInt(maxCarryover),
		IsActive:     active,
	}
	assert.NoError(t, f.db.Create(&lt).Error)
	return lt
}

func (f *ledgerFixture) addQuota(t *testing.T, u user.User, lt leavetype.LeaveType, year int, allocated, carried, used int64) leavequota.LeaveQuota {
	t.Helper()
	q := leavequota.LeaveQuota{
		ID:          uuid.New(),
		UserID:      u.ID,
		LeaveTypeID: lt.ID,
		Year:        year,
		Allocated:   decimal.NewFromInt(allocated),
		CarriedOver: decimal.NewFromInt(carried),
		Used:        decimal.NewFromInt(used),
	}
	assert.NoError(t, f.db.Create(&q).Error)
	return q
}

func (f *ledgerFixture) quota(t *testing.T, u user.User, lt leavetype.LeaveType, year int) *leavequota.LeaveQuota {
	t.Helper()
	q, err := f.repo.FindByKey(context.Background(), leavequota.Key{UserID: u.ID, LeaveTypeID: lt.ID, Year: year})
	assert.NoError(t, err)
	return q
}

func (f *ledgerFixture) auditLogs(t *testing.T, filter audit.Filter) []audit.AuditLog {
	t.Helper()
	if filter.Limit == 0 {
		filter.Limit = 200
	}
	logs, err := f.auditRepo.List(context.Background(), filter)
	assert.NoError(t, err)
	return logs
}

func TestLeaveQuotaService_Create(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	hr := actor.New(uuid.New(), actor.RoleHR)
	alice := f.addUser(t, "Alice", actor.RoleEmployee)
	annual := f.addType(t, "Annual", 21, 5, true)

	t.Run("success creates and audits", func(t *testing.T) {
		carried := 2.0
		resp, err := f.service.Create(ctx, hr, leavequota.CreateQuotaRequest{
			UserID:      alice.ID.String(),
			LeaveTypeID: annual.ID.String(),
			Year:        2026,
			Allocated:   21,
			CarriedOver: &carried,
		})

		assert.NoError(t, err)
		assert.Equal(t, 21.0, resp.Allocated)
		assert.Equal(t, 23.0, resp.Remaining)

		logs := f.auditLogs(t, audit.Filter{Action: audit.ActionCreate})
		assert.Len(t, logs, 1)
		assert.Equal(t, resp.ID, logs[0].EntityID.String())
		assert.Equal(t, hr.ID, *logs[0].ChangedBy)
	})

	t.Run("negative duplicate key is a conflict", func(t *testing.T) {
		_, err := f.service.Create(ctx, hr, leavequota.CreateQuotaRequest{
			UserID:      alice.ID.String(),
			LeaveTypeID: annual.ID.String(),
			Year:        2026,
			Allocated:   10,
		})

		assert.ErrorIs(t, err, leavequotaerrors.ErrQuotaExists)
		assert.Len(t, f.auditLogs(t, audit.Filter{Action: audit.ActionCreate}), 1)
	})

	t.Run("negative unknown leave type", func(t *testing.T) {
		_, err := f.service.Create(ctx, hr, leavequota.CreateQuotaRequest{
			UserID:      alice.ID.String(),
			LeaveTypeID: uuid.NewString(),
			Year:        2026,
			Allocated:   10,
		})

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
	})

	t.Run("negative year out of range", func(t *testing.T) {
		_, err := f.service.Create(ctx, hr, leavequota.CreateQuotaRequest{
			UserID:      alice.ID.String(),
			LeaveTypeID: annual.ID.String(),
			Year:        1999,
		})

		assert.ErrorIs(t, err, leavequotaerrors.ErrInvalidYear)
	})
}

func TestLeaveQuotaService_GetBalance(t *testing.T) {
	f := setupLedger(t)
	alice := f.addUser(t, "Alice", actor.RoleEmployee)
	annual := f.addType(t, "Annual", 21, 5, true)
	f.addQuota(t, alice, annual, 2026, 20, 4, 6)

	resp, err := f.service.GetBalance(context.Background(), actor.New(alice.ID, actor.RoleEmployee), 2026)

	assert.NoError(t, err)
	assert.Len(t, resp.Balance, 1)
	item := resp.Balance[0]
	assert.Equal(t, "Annual", item.Type)
	assert.Equal(t, 20.0, item.Total)
	assert.Equal(t, 6.0, item.Used)
	// remaining is total minus used; carried-over days are reported apart.
	assert.Equal(t, 14.0, item.Remaining)
	assert.Equal(t, 4.0, item.CarriedOver)
	assert.Equal(t, annual.ID.String(), item.LeaveTypeID)
}

func TestLeaveQuotaService_Adjust(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	hr := actor.New(uuid.New(), actor.RoleHR)
	alice := f.addUser(t, "Alice", actor.RoleEmployee)
	annual := f.addType(t, "Annual", 21, 5, true)
	q := f.addQuota(t, alice, annual, 2026, 21, 0, 3)

	t.Run("success allows used above balance and records history", func(t *testing.T) {
		used := 30.0
		resp, err := f.service.Adjust(ctx, hr, q.ID.String(), leavequota.AdjustQuotaRequest{Used: &used})

		assert.NoError(t, err)
		assert.Equal(t, 30.0, resp.Used)
		assert.Equal(t, 21.0, resp.Allocated)

		detail, err := f.service.GetByID(ctx, q.ID.String())
		assert.NoError(t, err)
		assert.Len(t, detail.ChangeHistory, 1)
		assert.Equal(t, leavequota.ChangeFieldAdjust, detail.ChangeHistory[0].Field)
		assert.Equal(t, hr.ID.String(), *detail.ChangeHistory[0].ChangedBy)

		logs := f.auditLogs(t, audit.Filter{Action: audit.ActionUpdate, EntityID: &q.ID})
		assert.Len(t, logs, 1)
		assert.Contains(t, string(logs[0].OldValue), `"used":"3"`)
		assert.Contains(t, string(logs[0].NewValue), `"used":"30"`)
	})

	t.Run("negative unknown quota", func(t *testing.T) {
		_, err := f.service.Adjust(ctx, hr, uuid.NewString(), leavequota.AdjustQuotaRequest{})

		assert.ErrorIs(t, err, leavequotaerrors.ErrQuotaNotFound)
	})
}

func TestCarryOver(t *testing.T) {
	cases := []struct {
		name     string
		prev     leavequota.LeaveQuota
		max      int64
		expected string
	}{
		{
			name:     "capped at max carryover",
			prev:     leavequota.LeaveQuota{Allocated: decimal.NewFromInt(20), CarriedOver: decimal.Zero, Used: decimal.NewFromInt(15)},
			max:      5,
			expected: "5",
		},
		{
			name:     "nothing left",
			prev:     leavequota.LeaveQuota{Allocated: decimal.NewFromInt(20), CarriedOver: decimal.Zero, Used: decimal.NewFromInt(20)},
			max:      5,
			expected: "0",
		},
		{
			name:     "overdrawn floors at zero",
			prev:     leavequota.LeaveQuota{Allocated: decimal.NewFromInt(10), CarriedOver: decimal.Zero, Used: decimal.NewFromInt(12)},
			max:      5,
			expected: "0",
		},
		{
			name:     "below cap includes prior carry",
			prev:     leavequota.LeaveQuota{Allocated: decimal.NewFromInt(10), CarriedOver: decimal.NewFromInt(2), Used: decimal.RequireFromString("10.5")},
			max:      5,
			expected: "1.5",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := leavequota.CarryOver(tc.prev, decimal.NewFromInt(tc.max))
			assert.Equal(t, tc.expected, got.String())
		})
	}
}

func TestLeaveQuotaService_YearlyReset(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	alice := f.addUser(t, "Alice", actor.RoleEmployee)
	bob := f.addUser(t, "Bob", actor.RoleEmployee)
	carol := f.addUser(t, "Carol", actor.RoleManager)
	annual := f.addType(t, "Annual", 20, 5, true)
	f.addType(t, "Legacy", 10, 10, false)

	f.addQuota(t, alice, annual, 2025, 20, 0, 15)
	f.addQuota(t, bob, annual, 2025, 20, 0, 20)
	f.addQuota(t, alice, annual, 2026, 20, 0, 4)

	resp, err := f.service.YearlyReset(ctx, 2026)

	assert.NoError(t, err)
	assert.Equal(t, 3, resp.Processed)
	assert.Empty(t, resp.Errors)

	a := f.quota(t, alice, annual, 2026)
	assert.Equal(t, "5", a.CarriedOver.String())
	assert.Equal(t, "20", a.Allocated.String())
	assert.True(t, a.Used.IsZero())

	b := f.quota(t, bob, annual, 2026)
	assert.True(t, b.CarriedOver.IsZero())

	c := f.quota(t, carol, annual, 2026)
	assert.True(t, c.CarriedOver.IsZero())
	assert.Equal(t, "20", c.Allocated.String())

	resets := f.auditLogs(t, audit.Filter{Action: audit.ActionReset})
	assert.Len(t, resets, 3)
	for _, l := range resets {
		assert.Nil(t, l.ChangedBy)
	}

	t.Run("success rerun keeps one row per key", func(t *testing.T) {
		_, err := f.service.YearlyReset(ctx, 2026)
		assert.NoError(t, err)

		var count int64
		assert.NoError(t, f.db.Model(&leavequota.LeaveQuota{}).Where("year = ?", 2026).Count(&count).Error)
		assert.Equal(t, int64(3), count)
	})
}

func TestLeaveQuotaService_Sync(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	hr := actor.New(uuid.New(), actor.RoleHR)
	alice := f.addUser(t, "Alice", actor.RoleEmployee)
	f.addUser(t, "Bob", actor.RoleManager)
	f.addUser(t, "Root", actor.RoleAdmin)
	annual := f.addType(t, "Annual", 21, 5, true)
	f.addType(t, "Sick", 10, 0, true)
	f.addType(t, "Legacy", 5, 0, false)
	f.addQuota(t, alice, annual, 2026, 25, 0, 2)

	resp, err := f.service.Sync(ctx, hr, 2026)

	assert.NoError(t, err)
	assert.Equal(t, 3, resp.Created)
	assert.Equal(t, 4, resp.Processed)
	assert.Empty(t, resp.Errors)

	// Existing rows are left alone.
	assert.Equal(t, "25", f.quota(t, alice, annual, 2026).Allocated.String())

	again, err := f.service.Sync(ctx, hr, 2026)
	assert.NoError(t, err)
	assert.Equal(t, 0, again.Created)
}

func TestLeaveQuotaService_SyncUser(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	dave := f.addUser(t, "Dave", actor.RoleEmployee)
	root := f.addUser(t, "Root", actor.RoleAdmin)
	annual := f.addType(t, "Annual", 21, 5, true)

	t.Run("success provisions new user", func(t *testing.T) {
		resp, err := f.service.SyncUser(ctx, dave.ID, 2026)

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.Created)
		assert.Equal(t, "21", f.quota(t, dave, annual, 2026).Allocated.String())

		logs := f.auditLogs(t, audit.Filter{Action: audit.ActionCreate})
		assert.Len(t, logs, 1)
		assert.Nil(t, logs[0].ChangedBy)
	})

	t.Run("success admin is skipped", func(t *testing.T) {
		resp, err := f.service.SyncUser(ctx, root.ID, 2026)

		assert.NoError(t, err)
		assert.Equal(t, 0, resp.Created)
	})

	t.Run("negative unknown user", func(t *testing.T) {
		_, err := f.service.SyncUser(ctx, uuid.New(), 2026)

		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})
}

func TestLeaveQuotaService_SeedForType(t *testing.T) {
	f := setupLedger(t)
	alice := f.addUser(t, "Alice", actor.RoleEmployee)
	f.addUser(t, "Bob", actor.RoleHR)
	f.addUser(t, "Root", actor.RoleAdmin)
	sick := f.addType(t, "Sick", 10, 0, true)

	seeded, err := f.service.SeedForType(context.Background(), sick, 2026)

	assert.NoError(t, err)
	assert.Equal(t, 2, seeded)
	q := f.quota(t, alice, sick, 2026)
	assert.Equal(t, "10", q.Allocated.String())
	assert.True(t, q.Used.IsZero())
}

func TestLeaveQuotaService_Import(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	hr := actor.New(uuid.New(), actor.RoleHR)
	alice := f.addUser(t, "Alice", actor.RoleEmployee)
	bob := f.addUser(t, "Bob", actor.RoleEmployee)
	annual := f.addType(t, "Annual", 21, 5, true)
	f.addQuota(t, bob, annual, 2026, 21, 0, 0)

	csv := strings.Join([]string{
		"user,leaveType,year,allocated,carriedOver",
		alice.ID.String() + "," + annual.ID.String() + ",2026,18,2.5",
		bob.ID.String() + "," + annual.ID.String() + ",2026,18,0",
		alice.ID.String() + "," + annual.ID.String() + ",20x6,18,0",
		alice.ID.String() + "," + annual.ID.String() + ",2027,18,",
	}, "\n")

	resp, err := f.service.Import(ctx, hr, strings.NewReader(csv))

	assert.NoError(t, err)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, 2, resp.Results[0].Line)
	assert.Equal(t, 5, resp.Results[1].Line)
	assert.Len(t, resp.Errors, 2)

	lines := map[int]string{}
	for _, e := range resp.Errors {
		lines[e.Line] = e.Error
	}
	assert.Contains(t, lines[4], "invalid year")
	assert.Equal(t, leavequotaerrors.ErrQuotaExists.Message, lines[3])

	q := f.quota(t, alice, annual, 2026)
	assert.Equal(t, "2.5", q.CarriedOver.String())
	assert.Len(t, f.auditLogs(t, audit.Filter{Action: audit.ActionImport}), 2)

	t.Run("negative bad header", func(t *testing.T) {
		_, err := f.service.Import(ctx, hr, strings.NewReader("id,type\n1,2"))
		assert.ErrorIs(t, err, leavequotaerrors.ErrInvalidCSVHeader)
	})

	t.Run("negative foreign key violation reported per row", func(t *testing.T) {
		svc := leavequota.NewService(
			f.sqlDB,
			fkViolatingRepo{Repository: f.repo},
			leavetype.NewRepository(f.db),
			user.NewRepository(f.db),
			audit.NewRecorder(f.auditRepo),
		)
		row := uuid.New().String() + "," + annual.ID.String() + ",2028,10,0"

		resp, err := svc.Import(ctx, hr, strings.NewReader("user,leaveType,year,allocated,carriedOver\n"+row))

		assert.NoError(t, err)
		assert.Empty(t, resp.Results)
		assert.Equal(t, []leavequota.RowError{{Line: 2, Error: "unknown user or leave type"}}, resp.Errors)
	})
}

// fkViolatingRepo fails inserts the way postgres does for a dangling user or leave type.
type fkViolatingRepo struct {
	leavequota.Repository
}

func (r fkViolatingRepo) WithTx(tx *sql.Tx) leavequota.Repository {
	return fkViolatingRepo{Repository: r.Repository.WithTx(tx)}
}

func (r fkViolatingRepo) Create(context.Context, *leavequota.LeaveQuota) error {
	return gorm.ErrForeignKeyViolated
}

func TestLeaveQuotaRollback(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	hr := actor.New(uuid.New(), actor.RoleHR)
	admin := actor.New(uuid.New(), actor.RoleAdmin)
	alice := f.addUser(t, "Alice", actor.RoleEmployee)
	annual := f.addType(t, "Annual", 21, 5, true)
	q := f.addQuota(t, alice, annual, 2026, 21, 0, 3)

	allocated := 25.0
	used := 7.0
	_, err := f.service.Adjust(ctx, hr, q.ID.String(), leavequota.AdjustQuotaRequest{Allocated: &allocated, Used: &used})
	assert.NoError(t, err)

	updates := f.auditLogs(t, audit.Filter{Action: audit.ActionUpdate, EntityID: &q.ID})
	assert.Len(t, updates, 1)

	registry := audit.NewRegistry()
	registry.Register(audit.KindLeaveQuota, leavequota.NewRestorer(f.repo))
	auditSvc := audit.NewService(f.sqlDB, f.auditRepo, registry, 200)

	resp, err := auditSvc.Rollback(ctx, admin, updates[0].ID.String())
	assert.NoError(t, err)
	assert.Equal(t, "Rollback successful", resp.Message)

	restored := f.quota(t, alice, annual, 2026)
	assert.Equal(t, q.ID, restored.ID)
	assert.Equal(t, "21", restored.Allocated.String())
	assert.Equal(t, "3", restored.Used.String())

	rollbacks := f.auditLogs(t, audit.Filter{Action: audit.ActionRollback})
	assert.Len(t, rollbacks, 1)
	assert.JSONEq(t, string(updates[0].NewValue), string(rollbacks[0].OldValue))
	assert.JSONEq(t, string(updates[0].OldValue), string(rollbacks[0].NewValue))

	detail, err := f.service.GetByID(ctx, q.ID.String())
	assert.NoError(t, err)
	assert.Len(t, detail.ChangeHistory, 2)
	assert.Equal(t, leavequota.ChangeFieldRollback, detail.ChangeHistory[1].Field)
}
