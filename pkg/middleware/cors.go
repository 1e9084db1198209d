package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS sets the cross-origin and security headers for the SPA client. The
// origin is fixed per deployment; credentials are allowed because the refresh
// token travels in a cookie. OPTIONS preflights are answered with 204.
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Headers", "Authorization, Accept, Content-Type")
		h.Set("Access-Control-Allow-Methods", "OPTIONS, POST, GET, PUT, DELETE")
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")

		// Security headers
		h.Set("Content-Security-Policy", "script-src 'self'")
		h.Set("X-XSS-Protection", "1;mode=block")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-Content-Type-Options", "nosniff")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
