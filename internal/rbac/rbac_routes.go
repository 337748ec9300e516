package rbac

import (
	"go-oms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authConfig middleware.AuthConfig) {
	group := r.Group("/rbac")
	group.Use(middleware.AuthMiddleware(authConfig))
	{
		group.GET("/permissions", handler.Permissions)
		group.POST("/enforce", handler.Enforce)
	}
}
