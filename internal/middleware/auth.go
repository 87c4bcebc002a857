package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/auth"
)

const ownerIDContextKey = "ownerID"

func OwnerIDFromContext(c *gin.Context) (string, bool) {
	ownerID, ok := c.Get(ownerIDContextKey)
	if !ok {
		return "", false
	}
	value, ok := ownerID.(string)
	return value, ok && value != ""
}

func RequireAuth(cfg auth.TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
			return
		}

		claims, err := auth.VerifyToken(parts[1], cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
			return
		}

		c.Set(ownerIDContextKey, claims.OwnerID)
		c.Next()
	}
}

// RequireOwner rejects requests whose token subject differs from the owner ID
// in the named path parameter. It must run after RequireAuth.
func RequireOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := OwnerIDFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
			return
		}
		if c.Param(param) != ownerID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}
