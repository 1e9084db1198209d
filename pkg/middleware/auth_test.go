package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/employee-portal/portal/backend/go-services/pkg/httperr"
)

// fakeVerifier implements AccessVerifier
type fakeVerifier struct{}

func (f *fakeVerifier) VerifyAccess(token string) (string, error) {
	if token == "goodtoken" {
		return "Omar", nil
	}
	return "", httperr.Forbidden("Forbidden")
}

func protected(t *testing.T) *gin.Engine {
	t.Helper()
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		username, ok := UsernameFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"username": username})
	})
	return g
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	rw := httptest.NewRecorder()
	protected(t).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.JSONEq(t, `{"error":"Unauthorized"}`, rw.Body.String())
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	for _, h := range []string{"BadHeader", "Basic dXNlcjpwYXNz", "bearer goodtoken"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", h)
		rw := httptest.NewRecorder()
		protected(t).ServeHTTP(rw, req)

		require.Equal(t, http.StatusUnauthorized, rw.Code, "header %q", h)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rw := httptest.NewRecorder()
	protected(t).ServeHTTP(rw, req)

	require.Equal(t, http.StatusForbidden, rw.Code)
	require.JSONEq(t, `{"error":"Forbidden"}`, rw.Body.String())
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()
	protected(t).ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	require.JSONEq(t, `{"username":"Omar"}`, rw.Body.String())
}
