package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/employee-portal/portal/backend/go-services/pkg/httperr"
	"github.com/employee-portal/portal/backend/go-services/pkg/metrics"
)

// UsernameKey is the context key carrying the identity resolved from the
// bearer token.
const UsernameKey = "username"

// AccessVerifier is the minimal interface the session boundary depends on.
type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

// AuthMiddleware returns a Gin middleware that gates protected routes on a
// verified bearer token. A missing or malformed Authorization header is 401;
// a present but invalid/expired token is whatever the verifier reports (403).
func AuthMiddleware(ver AccessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			metrics.TokenRejections.WithLabelValues("missing").Inc()
			httperr.Write(c, httperr.Unauthorized("Unauthorized"))
			return
		}

		username, err := ver.VerifyAccess(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			metrics.TokenRejections.WithLabelValues("invalid").Inc()
			httperr.Write(c, err)
			return
		}

		c.Set(UsernameKey, username)
		c.Next()
	}
}

// UsernameFrom returns the identity bound by AuthMiddleware.
func UsernameFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(UsernameKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
