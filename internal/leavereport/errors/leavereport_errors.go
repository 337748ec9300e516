package leavereporterrors

import (
	"net/http"

	"go-oms/internal/shared/apperror"
)

var (
	ErrUnsupportedFormat = apperror.New(
		apperror.CodeInvalidInput,
		"format must be xlsx",
		http.StatusBadRequest,
	)
	ErrExportFailed = apperror.New(
		apperror.CodeInternalError,
		"failed to generate report file",
		http.StatusInternalServerError,
	)
)
