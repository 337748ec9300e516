package leavetype

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
	types := r.Group("/leaves/types")
	types.Use(middleware.AuthMiddleware(authConfig))
	{
		types.GET("", middleware.RBACAuthorize(rbacService, "type", "read"), handler.List)
		types.GET("/:id", middleware.RBACAuthorize(rbacService, "type", "read"), handler.GetByID)
		types.POST("", middleware.RBACAuthorize(rbacService, "type", "manage"), handler.Create)
		types.PATCH("/:id", middleware.RBACAuthorize(rbacService, "type", "manage"), handler.Update)
		types.DELETE("/:id", middleware.RBACAuthorize(rbacService, "type", "manage"), handler.Delete)
	}
}
