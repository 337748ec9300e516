package leavequotaerrors

import (
	"net/http"

	"go-oms/internal/shared/apperror"
)

var (
	ErrQuotaNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave quota not found",
		http.StatusNotFound,
	)
	ErrNoQuotaConfigured = apperror.New(
		apperror.CodeNotFound,
		"no quota configured for this user, leave type and year",
		http.StatusNotFound,
	)
	ErrInvalidQuotaID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave quota id",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"year must be between 2000 and 2100",
		http.StatusBadRequest,
	)
	ErrQuotaExists = apperror.New(
		apperror.CodeConflict,
		"leave quota already exists for this user, leave type and year",
		http.StatusBadRequest,
	)
	ErrUnknownReference = apperror.New(
		apperror.CodeInvalidInput,
		"unknown user or leave type",
		http.StatusBadRequest,
	)
	ErrNegativeDays = apperror.New(
		apperror.CodeInvalidInput,
		"allocated and carried over days must not be negative",
		http.StatusBadRequest,
	)
	ErrMissingFile = apperror.New(
		apperror.CodeInvalidInput,
		"CSV file is required",
		http.StatusBadRequest,
	)
	ErrFileTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"CSV file is too large",
		http.StatusBadRequest,
	)
	ErrInvalidCSVHeader = apperror.New(
		apperror.CodeInvalidInput,
		"CSV header must be user,leaveType,year,allocated,carriedOver",
		http.StatusBadRequest,
	)
	ErrInvalidSnapshot = apperror.New(
		apperror.CodeInvalidState,
		"leave quota snapshot cannot be restored",
		http.StatusBadRequest,
	)
)
