package leaverequest

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go-oms/internal/actor"
	"go-oms/internal/middleware"
	"go-oms/internal/shared/apperror"
	"go-oms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leaverequest.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
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
	h.logger.Warn("http leave request validation failed", zap.Error(err))
	appErr := apperror.MapValidationError(err)
	response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", appErr.Error(), nil)
}

func (h *Handler) History(c *gin.Context) {
	by, ok := middleware.GetActor(c)
	if !ok {
		h.writeServiceError(c, middleware.ErrMissingActor)
		return
	}

	resp, err := h.service.History(c.Request.Context(), by)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Apply(c *gin.Context) {
	by, ok := middleware.GetActor(c)
	if !ok {
		h.writeServiceError(c, middleware.ErrMissingActor)
		return
	}

	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), by, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.act(c, h.service.Cancel)
}

func (h *Handler) Approve(c *gin.Context) {
	h.act(c, h.service.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.act(c, h.service.Reject)
}

func (h *Handler) AdminCancel(c *gin.Context) {
	h.act(c, h.service.AdminCancel)
}

type actionFunc func(ctx context.Context, by actor.Actor, id string, req CommentRequest) (ActionResponse, error)

func (h *Handler) act(c *gin.Context, fn actionFunc) {
	by, ok := middleware.GetActor(c)
	if !ok {
		h.writeServiceError(c, middleware.ErrMissingActor)
		return
	}

	// The comment body is optional.
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeBindError(c, err)
		return
	}

	resp, err := fn(c.Request.Context(), by, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Team(c *gin.Context) {
	by, ok := middleware.GetActor(c)
	if !ok {
		h.writeServiceError(c, middleware.ErrMissingActor)
		return
	}

	var q ListLeaveRequestsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Team(c.Request.Context(), by, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	var q ListLeaveRequestsQuery
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
