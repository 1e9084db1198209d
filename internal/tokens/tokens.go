package tokens

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/employee-portal/portal/backend/go-services/internal/config"
	"github.com/employee-portal/portal/backend/go-services/internal/models"
	"github.com/employee-portal/portal/backend/go-services/pkg/httperr"
)

// Kind selects the signing secret and lifetime of an issued token.
type Kind string

const (
	Access  Kind = "ACCESS"
	Refresh Kind = "REFRESH"
)

// RefreshCookieName is the HttpOnly cookie carrying the refresh token.
const RefreshCookieName = "refreshToken"

// Claims is the payload embedded in both token kinds.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issuer mints signed, time-limited access and refresh tokens.
type Issuer struct {
	jwt config.JWTConfig
}

func NewIssuer(cfg *config.Config) *Issuer {
	return &Issuer{jwt: cfg.JWT}
}

func (i *Issuer) secretAndTTL(kind Kind) ([]byte, time.Duration) {
	if kind == Refresh {
		return []byte(i.jwt.RefreshSecret), i.jwt.RefreshTokenTTL
	}
	return []byte(i.jwt.AccessSecret), i.jwt.AccessTokenTTL
}

// Issue creates a signed token of the given kind for the username.
func (i *Issuer) Issue(username string, kind Kind) (string, error) {
	secret, ttl := i.secretAndTTL(kind)
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// AccessExpirationMs is the access-token lifetime in milliseconds, the unit
// the client schedules its renewal timer in.
func (i *Issuer) AccessExpirationMs() int64 {
	return i.jwt.AccessTokenTTL.Milliseconds()
}

// IssueSessionPair mints both tokens for the username: the access token is
// returned to the caller, the refresh token goes out only as an HttpOnly,
// Secure, SameSite=None cookie scoped to the API path. It never appears in
// a JSON body.
func (i *Issuer) IssueSessionPair(c *gin.Context, username string) (string, int64, error) {
	access, err := i.Issue(username, Access)
	if err != nil {
		return "", 0, err
	}
	refresh, err := i.Issue(username, Refresh)
	if err != nil {
		return "", 0, err
	}
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(RefreshCookieName, refresh, int(i.jwt.RefreshTokenTTL.Seconds()), "/", "", true, true)
	return access, i.AccessExpirationMs(), nil
}

// ExpireRefreshCookie overwrites the refresh cookie with Max-Age=0.
func ExpireRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(RefreshCookieName, "", -1, "/", "", true, true)
}

// UserResolver is the credential lookup the refresh path depends on.
type UserResolver interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Verifier validates token signatures and expiry, extracting the username.
// The status split is part of the client contract: missing credential
// material is 401, present-but-invalid material is 403.
type Verifier struct {
	jwt      config.JWTConfig
	users    UserResolver
	denylist *Denylist
}

// NewVerifier creates a Verifier. denylist may be nil when Redis is not
// configured; revocation checks then pass trivially.
func NewVerifier(cfg *config.Config, users UserResolver, denylist *Denylist) *Verifier {
	return &Verifier{jwt: cfg.JWT, users: users, denylist: denylist}
}

func parse(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil, httperr.Forbidden("Forbidden")
	}
	return claims, nil
}

// VerifyAccess checks the token under the access secret and returns the
// embedded username. Fails with Forbidden(403) on any signature or expiry
// problem.
func (v *Verifier) VerifyAccess(token string) (string, error) {
	claims, err := parse(token, []byte(v.jwt.AccessSecret))
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

// VerifyRefresh checks the token under the refresh secret, rejects revoked
// tokens, and confirms the embedded username still resolves to a stored
// credential. A valid token whose user disappeared fails Unauthorized(401).
func (v *Verifier) VerifyRefresh(ctx context.Context, token string) (string, error) {
	claims, err := parse(token, []byte(v.jwt.RefreshSecret))
	if err != nil {
		return "", err
	}

	revoked, err := v.denylist.IsRevoked(ctx, token)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", httperr.Forbidden("Forbidden")
	}

	u, err := v.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", httperr.Unauthorized("Unauthorized")
	}
	return u.Username, nil
}
