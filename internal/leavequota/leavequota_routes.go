package leavequota

import (
	"go-oms/internal/middleware"
	"go-oms/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	authConfig middleware.AuthConfig,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(authConfig))
	{
		leaves.GET("/balance", middleware.RBACAuthorize(rbacService, "leave", "self"), handler.Balance)
	}

	quotas := r.Group("/leaves/quotas")
	quotas.Use(middleware.AuthMiddleware(authConfig), middleware.RBACAuthorize(rbacService, "quota", "manage"))
	{
		quotas.GET("", handler.List)
		quotas.GET("/matrix", handler.Matrix)
		quotas.GET("/:id", handler.GetByID)
		quotas.POST("", handler.Create)
		quotas.PATCH("/:id", handler.Adjust)
		quotas.POST("/reset/:year", handler.Reset)
		quotas.POST("/sync", handler.Sync)
		quotas.POST("/import", middleware.Idempotency(rdb), handler.Import)
	}
}
