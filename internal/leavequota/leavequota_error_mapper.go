package leavequota

import (
	"errors"
	"strings"

	leavequotaerrors "go-oms/internal/leavequota/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leavequotaerrors.ErrQuotaNotFound
	}
	if isDuplicateKey(err) {
		return leavequotaerrors.ErrQuotaExists
	}
	if isForeignKeyViolation(err) {
		return leavequotaerrors.ErrUnknownReference
	}

	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") ||
		strings.Contains(errMsg, "unique constraint")
}

// isForeignKeyViolation covers both translated gorm errors and raw postgres 23503.
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
