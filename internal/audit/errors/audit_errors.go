package auditerrors

import (
	"net/http"

	"go-oms/internal/shared/apperror"
)

var (
	ErrAuditLogNotFound = apperror.New(
		apperror.CodeNotFound,
		"audit log not found",
		http.StatusNotFound,
	)
	ErrInvalidAuditLogID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid audit log id",
		http.StatusBadRequest,
	)
	ErrRollbackNotSupported = apperror.New(
		apperror.CodeInvalidState,
		"only update and create logs can be rolled back",
		http.StatusBadRequest,
	)
	ErrUnsupportedEntity = apperror.New(
		apperror.CodeInvalidInput,
		"entity type does not support rollback",
		http.StatusBadRequest,
	)
	ErrNoPreviousState = apperror.New(
		apperror.CodeInvalidState,
		"no previous state to roll back to",
		http.StatusBadRequest,
	)
	ErrInvalidFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid audit log filter",
		http.StatusBadRequest,
	)
)
