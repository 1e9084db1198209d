package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/employee-portal/portal/backend/go-services/internal/employees"
	"github.com/employee-portal/portal/backend/go-services/pkg/httperr"
	"github.com/employee-portal/portal/backend/go-services/pkg/middleware"
)

// stubVerifier accepts exactly one bearer token
type stubVerifier struct{}

func (s *stubVerifier) VerifyAccess(token string) (string, error) {
	if token == "valid-access" {
		return "Omar", nil
	}
	return "", httperr.Forbidden("Forbidden")
}

func newEmployeeServer(t *testing.T) *gin.Engine {
	t.Helper()
	g := gin.New()
	svc := employees.NewService(employees.NewMemoryRepository())
	NewEmployeeHandler(svc).Register(g, middleware.AuthMiddleware(&stubVerifier{}))
	return g
}

func employeesDo(g *gin.Engine, method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer valid-access")
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

const employeeJSON = `{
	"firstName": "Jane",
	"lastName": "Doe",
	"email": "jane.doe@example.com",
	"age": 31,
	"DOB": "1994-04-12",
	"active": true,
	"skill": {"name": "Engineering", "description": "Backend services"}
}`

func TestEmployees_RequireBearer(t *testing.T) {
	g := newEmployeeServer(t)

	rw := employeesDo(g, http.MethodGet, "/api/Employees", "", false)
	assert.Equal(t, http.StatusUnauthorized, rw.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rw.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/Employees", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rw = httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusForbidden, rw.Code)
}

func TestEmployees_AddAndList(t *testing.T) {
	g := newEmployeeServer(t)

	rw := employeesDo(g, http.MethodPost, "/api/Employees", employeeJSON, true)
	require.Equal(t, http.StatusCreated, rw.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rw = employeesDo(g, http.MethodGet, "/api/Employees", "", true)
	require.Equal(t, http.StatusOK, rw.Code)

	var listed struct {
		Employees []struct {
			ID    string `json:"_id"`
			Email string `json:"email"`
			Skill *struct {
				Name string `json:"name"`
			} `json:"skill"`
		} `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &listed))
	require.Len(t, listed.Employees, 1)
	assert.Equal(t, created.ID, listed.Employees[0].ID)
	assert.Equal(t, "jane.doe@example.com", listed.Employees[0].Email)
	require.NotNil(t, listed.Employees[0].Skill)
	assert.Equal(t, "Engineering", listed.Employees[0].Skill.Name)
}

func TestEmployees_AddValidation(t *testing.T) {
	g := newEmployeeServer(t)

	rw := employeesDo(g, http.MethodPost, "/api/Employees", `{"firstName":"Jane123"}`, true)
	assert.Equal(t, http.StatusBadRequest, rw.Code)

	var body struct {
		Error       string   `json:"error"`
		EmptyFields []string `json:"emptyFields"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	assert.NotEmpty(t, body.EmptyFields)
}

func TestEmployees_AddDuplicateEmail(t *testing.T) {
	g := newEmployeeServer(t)

	require.Equal(t, http.StatusCreated, employeesDo(g, http.MethodPost, "/api/Employees", employeeJSON, true).Code)
	rw := employeesDo(g, http.MethodPost, "/api/Employees", employeeJSON, true)
	assert.Equal(t, http.StatusConflict, rw.Code)
	assert.Contains(t, rw.Body.String(), "Email Already Exists")
}

func TestEmployees_UpdateAndDelete(t *testing.T) {
	g := newEmployeeServer(t)

	rw := employeesDo(g, http.MethodPost, "/api/Employees", employeeJSON, true)
	require.Equal(t, http.StatusCreated, rw.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &created))

	updated := strings.Replace(employeeJSON, `"age": 31`, `"age": 32`, 1)
	rw = employeesDo(g, http.MethodPut, "/api/Employees/"+created.ID, updated, true)
	require.Equal(t, http.StatusOK, rw.Code)

	var upd struct {
		Employee struct {
			Age int `json:"age"`
		} `json:"employee"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &upd))
	assert.Equal(t, 32, upd.Employee.Age)

	// bogus id is rejected before touching the store
	rw = employeesDo(g, http.MethodPut, "/api/Employees/bogus", updated, true)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
	assert.Contains(t, rw.Body.String(), "Invalid ID")

	rw = employeesDo(g, http.MethodDelete, "/api/Employees/"+created.ID, "", true)
	require.Equal(t, http.StatusOK, rw.Code)

	rw = employeesDo(g, http.MethodDelete, "/api/Employees/"+created.ID, "", true)
	assert.Equal(t, http.StatusNotFound, rw.Code)
	assert.Contains(t, rw.Body.String(), "Employee Not Found")
}

func TestEmployees_InvalidJSONPayload(t *testing.T) {
	g := newEmployeeServer(t)
	rw := employeesDo(g, http.MethodPost, "/api/Employees", `{"firstName": `, true)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON payload"}`, rw.Body.String())
}

func TestEmployees_MethodFallthrough(t *testing.T) {
	g := newEmployeeServer(t)

	// unsupported method with a valid token answers 405
	rw := employeesDo(g, http.MethodPatch, "/api/Employees", "", true)
	assert.Equal(t, http.StatusMethodNotAllowed, rw.Code)

	// without credentials the boundary still answers first
	rw = employeesDo(g, http.MethodPatch, "/api/Employees", "", false)
	assert.Equal(t, http.StatusUnauthorized, rw.Code)

	// paths outside the directory stay 404
	rw = employeesDo(g, http.MethodGet, "/api/Unknown", "", true)
	assert.Equal(t, http.StatusNotFound, rw.Code)
}
