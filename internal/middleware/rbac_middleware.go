package middleware

import (
	"go-oms/internal/domain"
	"go-oms/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

// RBACService is satisfied by anything that can answer a domain.EnforceRequest.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			abortWithError(c, ErrMissingActor, nil)
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			abortWithError(c, apperror.ErrInternal, nil)
			return
		}

		if !allowed {
			abortWithError(c, ErrForbidden, gin.H{"required": resource + ":" + action})
			return
		}
		c.Next()
	}
}
