package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminKeyMiddleware guards the dashboard/ops endpoints with a shared API
// key. An empty configured key disables the check so the service runs
// out-of-the-box in local development. Sign-in itself is owned by the
// external identity provider; this is only a backstop for direct API access.
func AdminKeyMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.Next()
			return
		}
		if strings.TrimSpace(c.GetHeader("X-Admin-Key")) != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
