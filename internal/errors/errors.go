package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the wire shape for every error response.
type APIError struct {
	Message string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized."
	}
	RespondWithError(c, http.StatusUnauthorized, &APIError{Message: message})
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Not found."
	}
	RespondWithError(c, http.StatusNotFound, &APIError{Message: message})
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request."
	}
	RespondWithError(c, http.StatusBadRequest, &APIError{Message: message})
}

// BadRequestWithDetails sends a 400 response carrying field errors
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, &APIError{Message: message, Details: details})
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Conflict."
	}
	RespondWithError(c, http.StatusConflict, &APIError{Message: message})
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error."
	}
	RespondWithError(c, http.StatusInternalServerError, &APIError{Message: message})
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable."
	}
	RespondWithError(c, http.StatusServiceUnavailable, &APIError{Message: message})
}
