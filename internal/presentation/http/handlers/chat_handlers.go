// Package handlers contains the gin HTTP handlers for the chat, catalog,
// auth, admin and health endpoints.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tercihrehberi/tercihbot-go/internal/application/services"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
)

// ChatHandlers serves the REST chat surface
type ChatHandlers struct {
	chat   *services.ChatService
	logger *logging.ChanneledLogger
}

func NewChatHandlers(chat *services.ChatService, logger *logging.ChanneledLogger) *ChatHandlers {
	return &ChatHandlers{chat: chat, logger: logger}
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Message   string `json:"message" binding:"required"`
}

// HandleMessage processes POST /api/v1/chat
func (h *ChatHandlers) HandleMessage(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	start := time.Now()
	reply, err := h.chat.HandleMessage(c.Request.Context(), req.SessionID, req.UserID, req.Message)
	if err != nil {
		h.logger.Chat().Error("Message handling failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	h.logger.Chat().Info("Message handled",
		slog.String("sessionId", reply.SessionID),
		slog.String("intent", string(reply.Result.Intent)),
		slog.Duration("duration", time.Since(start)))

	c.JSON(http.StatusOK, reply)
}

// GetHistory processes GET /api/v1/chat/:sessionId/history
func (h *ChatHandlers) GetHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")

	messages, err := h.chat.History(c.Request.Context(), sessionID, 50)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"messages":  messages,
	})
}
