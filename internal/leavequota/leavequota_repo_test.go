package leavequota_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go-oms/internal/actor"
	"go-oms/internal/leavequota"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestLeaveQuotaRepository_DebitCredit(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	alice := f.addUser(t, "Alice", actor.RoleEmployee)
	annual := f.addType(t, "Annual", 21, 5, true)
	q := f.addQuota(t, alice, annual, 2026, 21, 0, 0)
	key := q.Key()

	t.Run("success debit then credit is symmetric", func(t *testing.T) {
		assert.NoError(t, f.repo.Debit(ctx, key, decimal.NewFromInt(3)))
		assert.Equal(t, "3", f.quota(t, alice, annual, 2026).Used.String())

		assert.NoError(t, f.repo.Debit(ctx, key, decimal.RequireFromString("0.5")))
		assert.Equal(t, "3.5", f.quota(t, alice, annual, 2026).Used.String())

		assert.NoError(t, f.repo.Credit(ctx, key, decimal.RequireFromString("0.5")))
		assert.NoError(t, f.repo.Credit(ctx, key, decimal.NewFromInt(3)))
		assert.True(t, f.quota(t, alice, annual, 2026).Used.IsZero())
	})

	t.Run("success credit has no floor", func(t *testing.T) {
		assert.NoError(t, f.repo.Credit(ctx, key, decimal.NewFromInt(1)))
		assert.Equal(t, "-1", f.quota(t, alice, annual, 2026).Used.String())
		assert.NoError(t, f.repo.Debit(ctx, key, decimal.NewFromInt(1)))
	})

	t.Run("negative missing row", func(t *testing.T) {
		missing := key
		missing.Year = 2030

		assert.ErrorIs(t, f.repo.Debit(ctx, missing, decimal.NewFromInt(1)), gorm.ErrRecordNotFound)
		assert.ErrorIs(t, f.repo.Credit(ctx, missing, decimal.NewFromInt(1)), gorm.ErrRecordNotFound)
	})

	t.Run("negative unique key rejects duplicate insert", func(t *testing.T) {
		dup := q
		dup.ID = uuid.New()
		err := f.repo.Create(ctx, &dup)

		assert.Error(t, err)
		assert.True(t, strings.Contains(strings.ToLower(err.Error()), "unique") || errors.Is(err, gorm.ErrDuplicatedKey))
	})
}

func TestParseImportCSV(t *testing.T) {
	t.Run("success reports row errors with line numbers", func(t *testing.T) {
		input := "user,leaveType,year,allocated,carriedOver\n" +
			"not-a-uuid,x,2026,1,0\n" +
			"\n" +
			"11111111-1111-1111-1111-111111111111,22222222-2222-2222-2222-222222222222,2026,-1,0\n" +
			"11111111-1111-1111-1111-111111111111,22222222-2222-2222-2222-222222222222,2026,12.5,1\n"

		rows, rowErrs, err := leavequota.ParseImportCSV(strings.NewReader(input))

		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, 5, rows[0].Line)
		assert.Equal(t, "12.5", rows[0].Allocated.String())
		assert.Len(t, rowErrs, 2)
		assert.Equal(t, 2, rowErrs[0].Line)
		assert.Contains(t, rowErrs[0].Error, "invalid user")
		assert.Equal(t, 4, rowErrs[1].Line)
		assert.Contains(t, rowErrs[1].Error, "invalid allocated")
	})

	t.Run("success header is case insensitive", func(t *testing.T) {
		rows, rowErrs, err := leavequota.ParseImportCSV(strings.NewReader("User,LeaveType,Year,Allocated,CarriedOver\n"))

		assert.NoError(t, err)
		assert.Empty(t, rows)
		assert.Empty(t, rowErrs)
	})

	t.Run("negative empty file", func(t *testing.T) {
		_, _, err := leavequota.ParseImportCSV(strings.NewReader(""))
		assert.Error(t, err)
	})
}
