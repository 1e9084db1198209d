package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/employee-portal/portal/backend/go-services/internal/employees"
	"github.com/employee-portal/portal/backend/go-services/internal/models"
	"github.com/employee-portal/portal/backend/go-services/pkg/httperr"
	"github.com/employee-portal/portal/backend/go-services/pkg/logger"
)

// API is the programmatic client for the portal service. The cookie jar
// carries the HttpOnly refresh cookie the way a browser would, the
// SessionManager caches the access token and renews it before expiry.
type API struct {
	base    string
	http    *http.Client
	session *SessionManager
}

// NewAPI builds a client against baseURL. broadcast may be nil; pass a
// shared Broadcaster to link the logout state of several clients.
func NewAPI(baseURL string, broadcast Broadcaster) (*API, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	a := &API{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}
	a.session = NewSessionManager(a.renewToken, broadcast)
	return a, nil
}

// NewAPIWithClient is NewAPI with a caller-supplied http.Client, for custom
// transports. A cookie jar is added when the client has none.
func NewAPIWithClient(baseURL string, hc *http.Client, broadcast Broadcaster) (*API, error) {
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		hc.Jar = jar
	}
	a := &API{base: strings.TrimRight(baseURL, "/"), http: hc}
	a.session = NewSessionManager(a.renewToken, broadcast)
	return a, nil
}

// Session exposes the token cache, mainly for tests and for Close.
func (a *API) Session() *SessionManager { return a.session }

// Close stops the renewal timer and detaches from the broadcast channel.
func (a *API) Close() { a.session.Close() }

type sessionResponse struct {
	AccessToken string `json:"accessToken"`
	Expiration  int64  `json:"expiration"`
}

type apiError struct {
	Error       string   `json:"error"`
	EmptyFields []string `json:"emptyFields"`
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := a.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ae apiError
		if err := json.NewDecoder(resp.Body).Decode(&ae); err != nil || ae.Error == "" {
			return httperr.New(resp.StatusCode, fmt.Sprintf("request failed with status %d", resp.StatusCode))
		}
		return &httperr.Error{Status: resp.StatusCode, Message: ae.Error, EmptyFields: ae.EmptyFields}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *API) openSession(ctx context.Context, path, username, password string) error {
	var sr sessionResponse
	body := map[string]string{"username": username, "password": password}
	if err := a.do(ctx, http.MethodPost, path, body, &sr); err != nil {
		return err
	}
	a.session.SetToken(sr.AccessToken, sr.Expiration)
	return nil
}

// Register creates a credential; a successful registration is logged in.
func (a *API) Register(ctx context.Context, username, password string) error {
	return a.openSession(ctx, "/api/Register", username, password)
}

// Login authenticates and stores the session tokens.
func (a *API) Login(ctx context.Context, username, password string) error {
	return a.openSession(ctx, "/api/Authenticate", username, password)
}

// Refresh exchanges the stored cookie for a fresh access token. A failed
// refresh clears the session quietly rather than surfacing to the caller.
func (a *API) Refresh(ctx context.Context) error {
	token, expiration, err := a.renewToken(ctx)
	if err != nil {
		logger.Debugf("client: refresh failed: %v", err)
		a.session.clear()
		return nil
	}
	a.session.SetToken(token, expiration)
	return nil
}

// renewToken is the RenewFunc feeding the SessionManager's silent renewal.
func (a *API) renewToken(ctx context.Context) (string, int64, error) {
	var sr sessionResponse
	if err := a.do(ctx, http.MethodPost, "/api/Authenticate/Refresh", nil, &sr); err != nil {
		return "", 0, err
	}
	return sr.AccessToken, sr.Expiration, nil
}

// Logout clears the server cookie and the local token cache. Sibling
// clients on the same Broadcaster are logged out too.
func (a *API) Logout(ctx context.Context) error {
	if err := a.do(ctx, http.MethodPost, "/api/Authenticate/Logout", nil, nil); err != nil {
		return err
	}
	a.session.DeleteToken()
	return nil
}

// Employees lists the directory with skills populated.
func (a *API) Employees(ctx context.Context) ([]models.Employee, error) {
	var out struct {
		Employees []models.Employee `json:"employees"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/Employees", nil, &out); err != nil {
		return nil, err
	}
	return out.Employees, nil
}

// AddEmployee creates a directory entry and returns its id.
func (a *API) AddEmployee(ctx context.Context, in *employees.Input) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/Employees", in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateEmployee rewrites an entry and returns the stored result.
func (a *API) UpdateEmployee(ctx context.Context, id string, in *employees.Input) (*models.Employee, error) {
	var out struct {
		Employee *models.Employee `json:"employee"`
	}
	if err := a.do(ctx, http.MethodPut, "/api/Employees/"+id, in, &out); err != nil {
		return nil, err
	}
	return out.Employee, nil
}

// DeleteEmployee removes an entry and its skill document.
func (a *API) DeleteEmployee(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/Employees/"+id, nil, nil)
}
