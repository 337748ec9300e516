package leavetypeerrors

import (
	"net/http"

	"go-oms/internal/shared/apperror"
)

var (
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrLeaveTypeNameExists = apperror.New(
		apperror.CodeConflict,
		"leave type with this name already exists",
		http.StatusBadRequest,
	)
	ErrNameRequired = apperror.RequiredField("Name")
	ErrInvalidDays  = apperror.New(
		apperror.CodeInvalidInput,
		"default days and max carryover must not be negative",
		http.StatusBadRequest,
	)
	ErrInvalidCarryoverExpiry = apperror.New(
		apperror.CodeInvalidInput,
		"carryover expiry must use MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidSnapshot = apperror.New(
		apperror.CodeInvalidState,
		"leave type snapshot cannot be restored",
		http.StatusBadRequest,
	)
)
