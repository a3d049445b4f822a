package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	handleTimeout  = 15 * time.Second
)

// inboundMessage is one user turn over the socket. SessionID is empty on
// the first message; the reply carries the assigned ID back.
type inboundMessage struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type errorMessage struct {
	Error string `json:"error"`
}

// Client is one websocket connection with its outbound queue
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string

	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 16),
		userID: userID,
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump consumes user turns until the connection drops. Each turn runs
// through the chat service with its own timeout so one stuck lookup
// cannot wedge the connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Chat().Warn("Websocket read failed", slog.Any("error", err))
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Message == "" {
			c.enqueue(errorMessage{Error: "expected {\"sessionId\", \"message\"}"})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		reply, err := c.hub.chat.HandleMessage(ctx, msg.SessionID, c.userID, msg.Message)
		cancel()
		if err != nil {
			c.hub.logger.Chat().Error("Websocket turn failed", slog.Any("error", err))
			c.enqueue(errorMessage{Error: "failed to process message"})
			continue
		}

		c.enqueue(reply)
	}
}

func (c *Client) enqueue(payload any) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return
	}
	select {
	case c.send <- encoded:
	default:
		// Slow consumer, drop the frame rather than block the pump
	}
}

// writePump flushes the outbound queue and keeps the connection alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
