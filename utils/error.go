package utils

import (
	"net/http"

	"chatbooking/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger := GetLogger()
				logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	logger := GetLogger()
	logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// JSONDomainError maps a domain error to the matching HTTP status.
func JSONDomainError(c *gin.Context, err error) {
	switch {
	case models.IsNotFound(err):
		JSONError(c, http.StatusNotFound, "not found", err.Error())
	case models.IsInvalidRange(err):
		JSONError(c, http.StatusBadRequest, "invalid range", err.Error())
	case models.IsSlotUnavailable(err):
		JSONError(c, http.StatusConflict, "slot unavailable", err.Error())
	case models.IsInvalidTransition(err):
		JSONError(c, http.StatusConflict, "invalid transition", err.Error())
	default:
		JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
