package middleware

import (
	"errors"
	"fmt"
	"strings"

	"go-oms/internal/actor"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthConfig struct {
	JWTSecret string
}

// AuthMiddleware validates the bearer token (or access_token cookie) and stores
// user_id, user_id_validated and role on the gin context.
func AuthMiddleware(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWithError(c, ErrTokenNotFound, nil)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, ErrTokenExpired, nil)
				return
			}
			abortWithError(c, ErrInvalidToken, nil)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWithError(c, ErrInvalidToken, "invalid token claims")
			return
		}

		userID, _ := claims["user_id"].(string)
		if _, err := uuid.Parse(userID); err != nil {
			abortWithError(c, ErrInvalidToken, "user_id not found in token")
			return
		}

		roleClaim, _ := claims["role"].(string)
		role, ok := actor.ParseRole(roleClaim)
		if !ok {
			abortWithError(c, ErrInvalidToken, "role not found in token")
			return
		}

		c.Set("user_id", userID)
		c.Set("user_id_validated", userID)
		c.Set("role", string(role))

		c.Next()
	}
}
