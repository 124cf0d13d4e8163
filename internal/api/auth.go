package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rachit-21/chatwave/internal/middleware"
	"github.com/rachit-21/chatwave/internal/models"
	"github.com/rachit-21/chatwave/internal/service"
	"go.uber.org/zap"
)

const refreshTokenCookie = "refreshToken"

// AuthHandler exposes the credential lifecycle over HTTP. Tokens travel
// both in the JSON body and as httpOnly cookies so browser and
// programmatic clients are equally served.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
	accessTTL    time.Duration
	refreshTTL   time.Duration
	logger       *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, cookieSecure bool, accessTTL, refreshTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		cookieSecure: cookieSecure,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		logger:       logger,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type authenticatedResponse struct {
	User   *models.User       `json:"user"`
	Tokens *service.TokenPair `json:"tokens"`
}

// Register handles POST /api/v1/auth/register. The verification token is
// returned in the response body; wiring an email sender is the
// deployment's concern.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, verificationToken, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"user":              user,
		"verificationToken": verificationToken,
	}, "registered, please verify your email")
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, pair, err := h.auth.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.setAuthCookies(c, pair)
	respondOK(c, http.StatusOK, authenticatedResponse{User: user, Tokens: pair}, "logged in")
}

// Logout handles POST /api/v1/auth/logout (authenticated).
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.clearAuthCookies(c)
	respondOK(c, http.StatusOK, nil, "logged out")
}

// RefreshToken handles POST /api/v1/auth/refresh-token. The token is
// read from the cookie or, failing that, the request body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	incoming, _ := c.Cookie(refreshTokenCookie)
	if incoming == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			incoming = req.RefreshToken
		}
	}

	user, pair, err := h.auth.RefreshAccessToken(c.Request.Context(), incoming)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.setAuthCookies(c, pair)
	respondOK(c, http.StatusOK, authenticatedResponse{User: user, Tokens: pair}, "token refreshed")
}

// VerifyEmail handles GET /api/v1/auth/verify-email/:verificationToken.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.auth.VerifyEmail(c.Request.Context(), c.Param("verificationToken")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "email verified")
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The response
// is identical whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resetToken, err := h.auth.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	data := gin.H{}
	if resetToken != "" {
		data["resetToken"] = resetToken
	}
	respondOK(c, http.StatusOK, data, "if that email is registered, a reset link has been sent")
}

// ResetPassword handles POST /api/v1/auth/reset-password/:resetToken.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.auth.ResetForgottenPassword(c.Request.Context(), c.Param("resetToken"), req.NewPassword); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "password reset, please log in again")
}

// ChangePassword handles POST /api/v1/auth/change-password
// (authenticated). Success revokes the current session.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.auth.ChangeCurrentPassword(c.Request.Context(), middleware.GetUserID(c), req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.clearAuthCookies(c)
	respondOK(c, http.StatusOK, nil, "password changed, please log in again")
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, pair *service.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken, int(h.accessTTL.Seconds()), "/", "", h.cookieSecure, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, int(h.refreshTTL.Seconds()), "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", h.cookieSecure, true)
}
