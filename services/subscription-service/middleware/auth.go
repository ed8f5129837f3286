package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devhours/backend/services/common/auth"
)

const UserKey = "userID"

// JWTAuth validates the bearer token and stores the caller's user id on the
// context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := auth.ParseAndValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		userID, ok := claims["userId"].(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(UserKey, userID)
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or uuid.Nil when the request
// was not authenticated.
func GetUserID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(UserKey)
	if !exists {
		return uuid.Nil
	}
	id, err := uuid.Parse(val.(string))
	if err != nil {
		return uuid.Nil
	}
	return id
}
