package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/security"
	"github.com/tercihrehberi/tercihbot-go/pkg/config"
)

// AuthHandlers issues admin tokens
type AuthHandlers struct {
	logger *logging.ChanneledLogger
}

func NewAuthHandlers(logger *logging.ChanneledLogger) *AuthHandlers {
	return &AuthHandlers{logger: logger}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login processes POST /api/v1/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	if config.AdminPasswordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin access is not configured"})
		return
	}

	if !security.VerifyPassword(config.AdminPasswordHash, req.Password) {
		h.logger.Auth().Warn("Admin login rejected", "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := security.GenerateAdminToken()
	if err != nil {
		h.logger.Auth().Error("Token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.logger.Auth().Info("Admin login succeeded", "ip", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresIn": config.JWTExpiry.String()})
}
