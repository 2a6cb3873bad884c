package handler

import (
	"net/http"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/auth"
	"github.com/Noviath61/finsight/internal/middleware"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/Noviath61/finsight/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *auth.Service
	logger      *zap.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// SignUp handles user registration
// POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var request model.Credentials
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendMessage(c, http.StatusBadRequest, "Username (3+ characters) and password (6+ characters) are required.")
		return
	}

	response, err := h.authService.SignUp(c.Request.Context(), request)
	if err != nil {
		if apperr.Kind(err) == apperr.KindInternal {
			h.logger.Error("signup failed", zap.String("username", request.Username), zap.Error(err))
			err = apperr.ErrUsernameTaken
		} else {
			h.logger.Info("signup failed", zap.String("username", request.Username), zap.Error(err))
		}
		utils.SendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var request model.Credentials
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, apperr.ErrInvalidCredentials)
		return
	}

	response, err := h.authService.LogIn(c.Request.Context(), request)
	if err != nil {
		if apperr.Kind(err) == apperr.KindInternal {
			h.logger.Error("login failed", zap.String("username", request.Username), zap.Error(err))
			err = apperr.ErrInvalidCredentials
		} else {
			h.logger.Debug("login failed", zap.String("username", request.Username), zap.Error(err))
		}
		utils.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Logout revokes the caller's token and provider session
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		utils.SendError(c, apperr.ErrSessionInvalid)
		return
	}

	if err := h.authService.LogOut(c.Request.Context(), claims); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the current user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		utils.SendError(c, apperr.ErrSessionInvalid)
		return
	}

	user, err := h.authService.Me(c.Request.Context(), claims)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
