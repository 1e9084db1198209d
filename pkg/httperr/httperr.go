package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is the uniform failure shape surfaced by every API endpoint:
// a status code, a user-facing message and, for validation failures,
// the list of offending field names.
type Error struct {
	Status      int
	Message     string
	EmptyFields []string
}

func (e *Error) Error() string { return e.Message }

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

// Unauthorized means credential material is missing or absent (401).
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg) }

// Forbidden means credential material is present but invalid, expired
// or wrong (403). The 401/403 split is part of the client contract.
func Forbidden(msg string) *Error { return New(http.StatusForbidden, msg) }

// BadRequest carries the validation failure and the fields that caused it.
func BadRequest(msg string, fields ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, EmptyFields: fields}
}

func Conflict(msg string, fields ...string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg, EmptyFields: fields}
}

func NotFound(msg string) *Error { return New(http.StatusNotFound, msg) }

// Write renders err as the JSON error body and aborts the request.
// Non-*Error values are reported as an opaque 500 so internals never leak.
func Write(c *gin.Context, err error) {
	var he *Error
	if !errors.As(err, &he) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	body := gin.H{"error": he.Message}
	if len(he.EmptyFields) > 0 {
		body["emptyFields"] = he.EmptyFields
	}
	c.AbortWithStatusJSON(he.Status, body)
}
