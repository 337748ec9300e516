package audit

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
	logs := r.Group("/leaves/audit-logs")
	logs.Use(middleware.AuthMiddleware(authConfig))
	{
		logs.GET("", middleware.RBACAuthorize(rbacService, "audit", "manage"), handler.List)
		logs.POST("/:id/rollback", middleware.RBACAuthorize(rbacService, "audit", "manage"), handler.Rollback)
	}
}
