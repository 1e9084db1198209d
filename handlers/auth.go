package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/employee-portal/portal/backend/go-services/internal/tokens"
	"github.com/employee-portal/portal/backend/go-services/internal/users"
	"github.com/employee-portal/portal/backend/go-services/pkg/httperr"
	"github.com/employee-portal/portal/backend/go-services/pkg/logger"
	"github.com/employee-portal/portal/backend/go-services/pkg/metrics"
)

// CredentialsRequest is the body shared by register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler serves the credential endpoints. The refresh token never
// crosses in a JSON body: it lives in an HttpOnly cookie that only the
// Refresh and Logout endpoints read.
type AuthHandler struct {
	users    *users.Service
	issuer   *tokens.Issuer
	verifier *tokens.Verifier
	denylist *tokens.Denylist
}

func NewAuthHandler(u *users.Service, i *tokens.Issuer, v *tokens.Verifier, d *tokens.Denylist) *AuthHandler {
	return &AuthHandler{users: u, issuer: i, verifier: v, denylist: d}
}

// Register wires the auth routes onto the engine.
func (h *AuthHandler) Register(r *gin.Engine) {
	r.POST("/api/Register", h.SignUp)
	r.POST("/api/Authenticate", h.Login)
	r.POST("/api/Authenticate/Refresh", h.Refresh)
	r.POST("/api/Authenticate/Logout", h.Logout)
}

func (h *AuthHandler) session(c *gin.Context, username, operation string) {
	access, expiration, err := h.issuer.IssueSessionPair(c, username)
	if err != nil {
		logger.Errorf("%s: failed to issue tokens for %q: %v", operation, username, err)
		metrics.AuthAttempts.WithLabelValues(operation, "error").Inc()
		httperr.Write(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues(operation, "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"accessToken": access, "expiration": expiration})
}

// SignUp creates the credential and opens a session in the same response,
// so a fresh registration is immediately logged in.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "error").Inc()
		httperr.Write(c, httperr.BadRequest("Invalid JSON payload"))
		return
	}

	u, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "error").Inc()
		httperr.Write(c, err)
		return
	}
	h.session(c, u.Username, "register")
}

// Login authenticates the pair and opens a session. A second login mints a
// fresh cookie without invalidating cookies from earlier logins.
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "error").Inc()
		httperr.Write(c, httperr.BadRequest("Invalid JSON payload"))
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "error").Inc()
		httperr.Write(c, err)
		return
	}
	h.session(c, u.Username, "login")
}

// Refresh exchanges the cookie for a new access token. No cookie at all is
// 401; a cookie that fails verification is 403. The cookie itself is left
// untouched, it stays valid until logout or expiry.
func (h *AuthHandler) Refresh(c *gin.Context) {
	rt, err := c.Cookie(tokens.RefreshCookieName)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("refresh", "error").Inc()
		httperr.Write(c, httperr.Unauthorized("Unauthorized"))
		return
	}

	username, err := h.verifier.VerifyRefresh(c.Request.Context(), rt)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("refresh", "error").Inc()
		httperr.Write(c, err)
		return
	}

	access, err := h.issuer.Issue(username, tokens.Access)
	if err != nil {
		logger.Errorf("refresh: failed to issue access token for %q: %v", username, err)
		metrics.AuthAttempts.WithLabelValues("refresh", "error").Inc()
		httperr.Write(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("refresh", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"accessToken": access, "expiration": h.issuer.AccessExpirationMs()})
}

// Logout clears the cookie and revokes the surrendered refresh token for
// its remaining lifetime. Without a cookie there is nothing to clear: 204.
func (h *AuthHandler) Logout(c *gin.Context) {
	rt, err := c.Cookie(tokens.RefreshCookieName)
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}

	tokens.ExpireRefreshCookie(c)

	if exp, err := tokens.ExpiryOf(rt); err == nil {
		if ttl := time.Until(exp); ttl > 0 {
			if err := h.denylist.Revoke(c.Request.Context(), rt, ttl); err != nil {
				logger.Warnf("logout: failed to revoke refresh token: %v", err)
			}
		}
	}
	metrics.AuthAttempts.WithLabelValues("logout", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Cookie cleared"})
}
