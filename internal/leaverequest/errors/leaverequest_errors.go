package leaverequesterrors

import (
	"net/http"

	"go-oms/internal/shared/apperror"
)

var (
	ErrLeaveRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidLeaveRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrMissingFields = apperror.New(
		apperror.CodeInvalidInput,
		"leaveTypeId, startDate and endDate are required",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDays = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave duration",
		http.StatusBadRequest,
	)
	ErrNoQuotaSet = apperror.New(
		apperror.CodeInvalidInput,
		"no quota set for this leave type",
		http.StatusBadRequest,
	)
	ErrNotEnoughBalance = apperror.New(
		apperror.CodeInvalidInput,
		"not enough balance",
		http.StatusBadRequest,
	)
	ErrQuotaMissingOnApprove = apperror.New(
		apperror.CodeInvalidInput,
		"no quota found for this leave, please set up leave quotas",
		http.StatusBadRequest,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be approved or rejected",
		http.StatusBadRequest,
	)
	ErrCannotCancel = apperror.New(
		apperror.CodeInvalidState,
		"only pending or approved leave requests can be cancelled",
		http.StatusBadRequest,
	)
	ErrAlreadyCancelled = apperror.New(
		apperror.CodeInvalidState,
		"leave request is already cancelled",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be one of pending, approved, rejected, cancelled",
		http.StatusBadRequest,
	)
)
