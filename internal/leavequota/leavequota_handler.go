package leavequota

import (
	"errors"
	"net/http"
	"strconv"

	leavequotaerrors "go-oms/internal/leavequota/errors"
	"go-oms/internal/middleware"
	"go-oms/internal/shared/apperror"
	"go-oms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const DefaultImportMaxBytes int64 = 5 << 20

type Handler struct {
	service        Service
	importMaxBytes int64
	logger         *zap.Logger
}

func NewHandler(service Service, importMaxBytes int64, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leavequota.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavequota.handler")
	}
	if importMaxBytes <= 0 {
		importMaxBytes = DefaultImportMaxBytes
	}
	return &Handler{service: service, importMaxBytes: importMaxBytes, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave quota request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	h.logger.Warn("http leave quota validation failed", zap.Error(err))
	appErr := apperror.MapValidationError(err)
	response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", appErr.Error(), nil)
}

func (h *Handler) Balance(c *gin.Context) {
	by, ok := middleware.GetActor(c)
	if !ok {
		h.writeServiceError(c, middleware.ErrMissingActor)
		return
	}

	year := 0
	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			h.writeServiceError(c, leavequotaerrors.ErrInvalidYear)
			return
		}
		year = parsed
	}

	resp, err := h.service.GetBalance(c.Request.Context(), by, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuotasQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Create(c *gin.Context) {
	by, ok := middleware.GetActor(c)
	if !ok {
		h.writeServiceError(c, middleware.ErrMissingActor)
		return
	}

	var req CreateQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), by, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Adjust(c *gin.Context) {
	by, ok := middleware.GetActor(c)
	if !ok {
		h.writeServiceError(c, middleware.ErrMissingActor)
		return
	}

	var req AdjustQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Adjust(c.Request.Context(), by, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Matrix(c *gin.Context) {
	var q MatrixQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Matrix(c.Request.Context(), q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reset(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.writeServiceError(c, leavequotaerrors.ErrInvalidYear)
		return
	}

	resp, err := h.service.YearlyReset(c.Request.Context(), year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Sync(c *gin.Context) {
	by, ok := middleware.GetActor(c)
	if !ok {
		h.writeServiceError(c, middleware.ErrMissingActor)
		return
	}

	year := 0
	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			h.writeServiceError(c, leavequotaerrors.ErrInvalidYear)
			return
		}
		year = parsed
	}

	resp, err := h.service.Sync(c.Request.Context(), by, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Import(c *gin.Context) {
	by, ok := middleware.GetActor(c)
	if !ok {
		h.writeServiceError(c, middleware.ErrMissingActor)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.importMaxBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeServiceError(c, leavequotaerrors.ErrFileTooLarge)
			return
		}
		h.writeServiceError(c, leavequotaerrors.ErrMissingFile)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.writeServiceError(c, leavequotaerrors.ErrMissingFile.WithCause(err))
		return
	}
	defer file.Close()

	resp, err := h.service.Import(c.Request.Context(), by, file)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
