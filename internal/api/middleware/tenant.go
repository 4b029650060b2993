package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Tenant pulls the tenant id out of the verified claims. Every report
// below this middleware is tenant-scoped.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := c.Get("claims")
		if !exists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Claims not found"})
			c.Abort()
			return
		}

		jwtClaims := claims.(jwt.MapClaims)

		tenantID, ok := jwtClaims["tenant_id"].(string)
		if !ok || tenantID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tenant not found in token"})
			c.Abort()
			return
		}

		c.Set("tenant_id", tenantID)
		c.Next()
	}
}
