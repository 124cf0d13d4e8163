package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rachit-21/chatwave/internal/middleware"
	"github.com/rachit-21/chatwave/internal/service"
	"go.uber.org/zap"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewUserHandler(auth *service.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{auth: auth, logger: logger}
}

// GetMe handles GET /api/v1/users/me.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, user, "")
}
