package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/employee-portal/portal/backend/go-services/internal/config"
	"github.com/employee-portal/portal/backend/go-services/internal/models"
	"github.com/employee-portal/portal/backend/go-services/internal/tokens"
	"github.com/employee-portal/portal/backend/go-services/internal/users"
)

// fakeUserRepo is a map-backed credential store
type fakeUserRepo struct {
	mu    sync.Mutex
	store map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{store: map[string]*models.User{}}
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.store[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Exists(ctx context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.store[username]
	return ok, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = "id-" + u.Username
	f.store[u.Username] = u
	return u, nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:    "access-secret",
			RefreshSecret:   "refresh-secret",
			AccessTokenTTL:  2 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Auth: config.AuthConfig{HashCost: bcrypt.MinCost},
	}
}

type authEnv struct {
	engine   *gin.Engine
	issuer   *tokens.Issuer
	verifier *tokens.Verifier
	denylist *tokens.Denylist
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := testAuthConfig()
	uSvc := users.NewService(newFakeUserRepo(), cfg.Auth.HashCost)
	denylist := tokens.NewDenylist(rdb)
	issuer := tokens.NewIssuer(cfg)
	verifier := tokens.NewVerifier(cfg, uSvc, denylist)

	g := gin.New()
	NewAuthHandler(uSvc, issuer, verifier, denylist).Register(g)
	return &authEnv{engine: g, issuer: issuer, verifier: verifier, denylist: denylist}
}

func (e *authEnv) post(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rw := httptest.NewRecorder()
	e.engine.ServeHTTP(rw, req)
	return rw
}

func refreshCookie(t *testing.T, rw *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	resp := http.Response{Header: rw.Header()}
	for _, ck := range resp.Cookies() {
		if ck.Name == tokens.RefreshCookieName {
			return ck
		}
	}
	t.Fatal("no refresh cookie in response")
	return nil
}

func TestRegister_OpensSession(t *testing.T) {
	env := newAuthEnv(t)

	rw := env.post("/api/Register", `{"username":"Omar","password":"0mar.Duadu!"}`)
	require.Equal(t, http.StatusOK, rw.Code)

	var body struct {
		AccessToken string `json:"accessToken"`
		Expiration  int64  `json:"expiration"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, int64(120000), body.Expiration)

	// the access token works against the session boundary
	username, err := env.verifier.VerifyAccess(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Omar", username)

	// refresh token goes out only as an HttpOnly cookie
	ck := refreshCookie(t, rw)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, 604800, ck.MaxAge)
	assert.NotContains(t, rw.Body.String(), ck.Value)
}

func TestRegister_Duplicate(t *testing.T) {
	env := newAuthEnv(t)

	require.Equal(t, http.StatusOK, env.post("/api/Register", `{"username":"Omar","password":"0mar.Duadu!"}`).Code)

	rw := env.post("/api/Register", `{"username":"Omar","password":"0mar.Duadu!"}`)
	assert.Equal(t, http.StatusConflict, rw.Code)
	assert.JSONEq(t, `{"error":"User already exists. Please Login"}`, rw.Body.String())
}

func TestRegister_WeakPassword(t *testing.T) {
	env := newAuthEnv(t)

	rw := env.post("/api/Register", `{"username":"Omar","password":"allowercase1"}`)
	assert.Equal(t, http.StatusBadRequest, rw.Code)

	var body struct {
		Error       string   `json:"error"`
		EmptyFields []string `json:"emptyFields"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "Weak password")
	assert.Equal(t, []string{"password"}, body.EmptyFields)
}

func TestLogin_StatusSplit(t *testing.T) {
	env := newAuthEnv(t)
	require.Equal(t, http.StatusOK, env.post("/api/Register", `{"username":"Omar","password":"0mar.Duadu!"}`).Code)

	// wrong password: credential material present but wrong
	rw := env.post("/api/Authenticate", `{"username":"Omar","password":"WrongPass1!"}`)
	assert.Equal(t, http.StatusUnauthorized, rw.Code)
	assert.JSONEq(t, `{"error":"Invalid Password"}`, rw.Body.String())

	// unknown username
	rw = env.post("/api/Authenticate", `{"username":"Nobody","password":"0mar.Duadu!"}`)
	assert.Equal(t, http.StatusForbidden, rw.Code)
	assert.JSONEq(t, `{"error":"Invalid Username"}`, rw.Body.String())

	// correct pair
	rw = env.post("/api/Authenticate", `{"username":"Omar","password":"0mar.Duadu!"}`)
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), "accessToken")
}

func TestLogin_MalformedBody(t *testing.T) {
	env := newAuthEnv(t)
	rw := env.post("/api/Authenticate", `{"username": `)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON payload"}`, rw.Body.String())
}

func TestRefresh_NoCookie(t *testing.T) {
	env := newAuthEnv(t)
	rw := env.post("/api/Authenticate/Refresh", "")
	assert.Equal(t, http.StatusUnauthorized, rw.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rw.Body.String())
}

func TestRefresh_ValidCookie(t *testing.T) {
	env := newAuthEnv(t)
	login := env.post("/api/Register", `{"username":"Omar","password":"0mar.Duadu!"}`)
	ck := refreshCookie(t, login)

	rw := env.post("/api/Authenticate/Refresh", "", ck)
	require.Equal(t, http.StatusOK, rw.Code)

	var body struct {
		AccessToken string `json:"accessToken"`
		Expiration  int64  `json:"expiration"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	assert.Equal(t, int64(120000), body.Expiration)

	username, err := env.verifier.VerifyAccess(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Omar", username)

	// the refresh endpoint never rotates the cookie
	resp := http.Response{Header: rw.Header()}
	assert.Empty(t, resp.Cookies())
}

func TestRefresh_GarbageCookie(t *testing.T) {
	env := newAuthEnv(t)
	rw := env.post("/api/Authenticate/Refresh", "", &http.Cookie{Name: tokens.RefreshCookieName, Value: "not.a.jwt"})
	assert.Equal(t, http.StatusForbidden, rw.Code)
	assert.JSONEq(t, `{"error":"Forbidden"}`, rw.Body.String())
}

func TestLogin_SecondLoginKeepsFirstCookieValid(t *testing.T) {
	env := newAuthEnv(t)
	require.Equal(t, http.StatusOK, env.post("/api/Register", `{"username":"Omar","password":"0mar.Duadu!"}`).Code)

	first := refreshCookie(t, env.post("/api/Authenticate", `{"username":"Omar","password":"0mar.Duadu!"}`))
	second := refreshCookie(t, env.post("/api/Authenticate", `{"username":"Omar","password":"0mar.Duadu!"}`))

	assert.Equal(t, http.StatusOK, env.post("/api/Authenticate/Refresh", "", first).Code)
	assert.Equal(t, http.StatusOK, env.post("/api/Authenticate/Refresh", "", second).Code)
}

func TestLogout_ClearsAndRevokes(t *testing.T) {
	env := newAuthEnv(t)
	login := env.post("/api/Register", `{"username":"Omar","password":"0mar.Duadu!"}`)
	ck := refreshCookie(t, login)

	rw := env.post("/api/Authenticate/Logout", "", ck)
	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"message":"Cookie cleared"}`, rw.Body.String())

	cleared := refreshCookie(t, rw)
	assert.Empty(t, cleared.Value)
	assert.LessOrEqual(t, cleared.MaxAge, 0)

	// the surrendered token can no longer be replayed
	replay := env.post("/api/Authenticate/Refresh", "", ck)
	assert.Equal(t, http.StatusForbidden, replay.Code)
}

func TestLogout_NoCookie(t *testing.T) {
	env := newAuthEnv(t)
	rw := env.post("/api/Authenticate/Logout", "")
	assert.Equal(t, http.StatusNoContent, rw.Code)
	assert.Empty(t, rw.Body.String())
}
