// Package websocket provides the realtime chat transport: a hub tracking
// connected clients and per-connection read/write pumps.
package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tercihrehberi/tercihbot-go/internal/application/services"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The widget is embedded on arbitrary school sites
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks live websocket clients and routes their messages through
// the chat service.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	chat   *services.ChatService
	logger *logging.ChanneledLogger
}

func NewHub(chat *services.ChatService, logger *logging.ChanneledLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		chat:       chat,
		logger:     logger,
	}
}

// Run owns the client set until the context is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.logger.System().Info("Websocket hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Chat().Debug("Websocket client connected",
				slog.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			h.logger.Chat().Debug("Websocket client disconnected",
				slog.Int("clients", len(h.clients)))
		}
	}
}

// ClientCount reports connected clients, for the stats endpoint
func (h *Hub) ClientCount() int {
	return len(h.clients)
}

// HandleConnection upgrades GET /ws/chat and starts the client pumps
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Chat().Warn("Websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := newClient(h, conn, c.Query("userId"))
	h.register <- client

	go client.writePump()
	go client.readPump()
}
