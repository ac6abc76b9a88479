// internal/pkg/response/response.go
package response

import (
	"net/http"

	xerrors "attendance-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error) {
	// CRITICAL: Abort FIRST before writing response
	c.Abort()

	resp := Response{
		Success: false,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}

	c.JSON(code, resp)
}

// FromDomainError maps an engine error kind to its transport status code and
// writes the response. The kinds are deliberately distinguishable so callers
// can tell a stale token from a proxy rejection (conflict-class) from a
// session that simply is not open (precondition-class).
func FromDomainError(c *gin.Context, err error) {
	switch {
	case xerrors.Is(err, xerrors.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", err)
	case xerrors.Is(err, xerrors.ErrInvalidCredential):
		Error(c, http.StatusBadRequest, "invalid or expired QR token", err)
	case xerrors.Is(err, xerrors.ErrSessionNotOpen),
		xerrors.Is(err, xerrors.ErrAdmissionClosed):
		Error(c, http.StatusForbidden, "attendance not open", err)
	case xerrors.Is(err, xerrors.ErrDeviceConflict),
		xerrors.Is(err, xerrors.ErrDuplicateEntry),
		xerrors.Is(err, xerrors.ErrDuplicateExit),
		xerrors.Is(err, xerrors.ErrAlreadyCompleted),
		xerrors.Is(err, xerrors.ErrNoEntryOnRecord),
		xerrors.Is(err, xerrors.ErrInvalidTransition):
		Error(c, http.StatusConflict, "request conflicts with current state", err)
	case xerrors.Is(err, xerrors.ErrInvalidInput):
		Error(c, http.StatusBadRequest, "invalid request", err)
	case xerrors.Is(err, xerrors.ErrUnavailable):
		Error(c, http.StatusServiceUnavailable, "service temporarily unavailable", err)
	default:
		Error(c, http.StatusInternalServerError, "internal server error", err)
	}
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}
