package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/employee-portal/portal/backend/go-services/internal/employees"
	"github.com/employee-portal/portal/backend/go-services/pkg/httperr"
)

// EmployeeHandler serves the directory CRUD behind the session boundary.
type EmployeeHandler struct {
	svc *employees.Service
}

func NewEmployeeHandler(svc *employees.Service) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// Register wires the protected directory routes. Any other method on these
// paths falls through to 405 after the bearer check, see NoRoute below.
func (h *EmployeeHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/Employees", auth)
	g.GET("", h.List)
	g.POST("", h.Add)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	// Unmatched method/path under /api/Employees answers 405 rather than 404,
	// and only to holders of a valid access token.
	r.NoRoute(func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api/Employees") {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not Found"})
			return
		}
		auth(c)
		if c.IsAborted() {
			return
		}
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed"})
	})
}

func (h *EmployeeHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": list})
}

func (h *EmployeeHandler) Add(c *gin.Context) {
	var in employees.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.Write(c, httperr.BadRequest("Invalid JSON payload"))
		return
	}
	id, err := h.svc.Add(c.Request.Context(), &in)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	var in employees.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.Write(c, httperr.BadRequest("Invalid JSON payload"))
		return
	}
	e, err := h.svc.Update(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": e})
}

func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee Deleted"})
}
