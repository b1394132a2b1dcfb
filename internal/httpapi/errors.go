package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinic-booking/core/internal/service"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

// JSONError sends a standardized JSON error response.
func JSONError(c *gin.Context, status int, message, details string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Details: details})
}

// respondError maps the service taxonomy onto HTTP status codes.
// Unexpected errors are logged and answered with a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var ce *service.ConflictError
	switch {
	case errors.As(err, &ce):
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{Error: ce.Error(), Reason: string(ce.Reason)})
	case errors.Is(err, service.ErrValidation):
		JSONError(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, service.ErrNotFound):
		JSONError(c, http.StatusNotFound, err.Error(), "")
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		JSONError(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred. Please try again later.")
	}
}
