// Package httpx holds the JSON request/response helpers shared by every handler group.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/gestor/internal/apperr"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// StatusFor maps an application error kind to an HTTP status
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		// Duplicate registrations have always been answered with 400
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as JSON and aborts the request. Unclassified errors are
// logged and answered with a generic 500.
func Error(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(StatusFor(err), ErrorResponse{
			Error:   appErr.Message,
			Details: appErr.Fields,
		})
		return
	}

	slog.Error("Request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"request_id", c.GetString(RequestIDKey),
		"error", err.Error(),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Error interno del servidor"})
}

// ParseID reads a numeric path parameter. A non-numeric id is answered
// as not found, matching integer route matching.
func ParseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("No encontrado")
	}
	return uint(id), nil
}
