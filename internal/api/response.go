package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rachit-21/chatwave/internal/service"
	"go.uber.org/zap"
)

// envelope is the uniform response shape. Success responses carry data;
// failures carry a message and, for binding failures, field errors.
type envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func respondOK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Message: "invalid request body",
		Errors:  []string{err.Error()},
	})
}

// respondServiceError maps the service sentinels onto HTTP statuses.
// Anything unmapped is an internal error; its details are logged, not
// returned.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrSelfChat),
		errors.Is(err, service.ErrNotGroupChat),
		errors.Is(err, service.ErrTooFewMembers):
		respondError(c, http.StatusBadRequest, err.Error())
	// A bad one-time token is a malformed request, not a failed
	// authentication: the caller is not asked to present credentials.
	case errors.Is(err, service.ErrInvalidToken):
		respondError(c, http.StatusBadRequest, "invalid or expired token")
	case errors.Is(err, service.ErrUserExists):
		respondError(c, http.StatusConflict, "username or email already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "you are not allowed to do that")
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "resource not found")
	default:
		logger.Error("unhandled service error", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
