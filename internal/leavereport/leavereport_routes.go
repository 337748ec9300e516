package leavereport

import (
	"go-oms/internal/middleware"
	"go-oms/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	authConfig middleware.AuthConfig,
) {
	report := r.Group("/leaves/report")
	report.Use(middleware.AuthMiddleware(authConfig), middleware.RBACAuthorize(rbacService, "report", "read"))
	{
		report.GET("", handler.Report)
		report.GET("/export", handler.Export)
	}
}
