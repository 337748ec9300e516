package leaverequest

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
	applyLimit gin.HandlerFunc,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(authConfig))
	{
		self := middleware.RBACAuthorize(rbacService, "leave", "self")
		leaves.GET("/history", self, handler.History)
		leaves.POST("/apply", self, applyLimit, middleware.Idempotency(rdb), handler.Apply)
		leaves.PATCH("/cancel/:id", self, handler.Cancel)

		leaves.GET("/team", middleware.RBACAuthorize(rbacService, "leave", "team"), handler.Team)

		manage := middleware.RBACAuthorize(rbacService, "leave", "manage")
		leaves.GET("/requests", manage, handler.List)
		leaves.PATCH("/approve/:id", manage, handler.Approve)
		leaves.PATCH("/reject/:id", manage, handler.Reject)
		leaves.PATCH("/admin-cancel/:id", manage, handler.AdminCancel)
	}
}
