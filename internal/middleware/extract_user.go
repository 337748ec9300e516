package middleware

import (
	"go-oms/internal/actor"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetActor rebuilds the caller identity that AuthMiddleware stored on the context.
func GetActor(c *gin.Context) (actor.Actor, bool) {
	userID := c.GetString("user_id_validated")
	if userID == "" {
		userID = c.GetString("user_id")
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return actor.Actor{}, false
	}

	role, ok := actor.ParseRole(c.GetString("role"))
	if !ok {
		return actor.Actor{}, false
	}

	return actor.New(id, role), true
}
