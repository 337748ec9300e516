package audit_test

import (
	"context"
	"testing"
	"time"

	"go-oms/internal/audit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuditDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&audit.AuditLog{}))
	return db
}

func TestAuditRepository_List(t *testing.T) {
	db := setupAuditDB(t)
	repo := audit.NewRepository(db)
	ctx := context.Background()

	quotaID := uuid.New()
	typeID := uuid.New()
	hrID := uuid.New()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	seed := []audit.AuditLog{
		{ID: uuid.New(), Action: audit.ActionCreate, EntityType: audit.KindLeaveType, EntityID: typeID, ChangedBy: &hrID, NewValue: datatypes.JSON(`{"name":"Annual"}`), Details: "created", CreatedAt: base},
		{ID: uuid.New(), Action: audit.ActionUpdate, EntityType: audit.KindLeaveQuota, EntityID: quotaID, ChangedBy: &hrID, Details: "adjusted", CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), Action: audit.ActionReset, EntityType: audit.KindLeaveQuota, EntityID: quotaID, Details: "reset", CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range seed {
		assert.NoError(t, repo.Create(ctx, &seed[i]))
	}

	t.Run("success newest first", func(t *testing.T) {
		logs, err := repo.List(ctx, audit.Filter{Limit: 10})
		assert.NoError(t, err)
		assert.Len(t, logs, 3)
		assert.Equal(t, audit.ActionReset, logs[0].Action)
		assert.Equal(t, audit.ActionCreate, logs[2].Action)
	})

	t.Run("success filters by entity and user", func(t *testing.T) {
		logs, err := repo.List(ctx, audit.Filter{EntityType: audit.KindLeaveQuota, ChangedBy: &hrID, Limit: 10})
		assert.NoError(t, err)
		assert.Len(t, logs, 1)
		assert.Equal(t, "adjusted", logs[0].Details)
	})

	t.Run("success applies limit", func(t *testing.T) {
		logs, err := repo.List(ctx, audit.Filter{Limit: 2})
		assert.NoError(t, err)
		assert.Len(t, logs, 2)
	})

	t.Run("negative find missing id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
