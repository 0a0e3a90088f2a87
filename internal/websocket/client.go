package websocket

import (
	"sync"
	"time"

	"rich-text-bridge/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 * 1024
)

// MessageHandler handles one text frame read from a session.
type MessageHandler func(c *Client, data []byte)

// Client is one editor session on one document.
type Client struct {
	ID         uuid.UUID
	Hub        *Hub
	Conn       *websocket.Conn
	DocumentID uuid.UUID
	UserID     uuid.UUID

	// Buffered channel of outbound messages.
	Send chan []byte

	closeOnce sync.Once
	closed    chan struct{}
	logger    logger.ILogger
}

func NewClient(hub *Hub, conn *websocket.Conn, documentID, userID uuid.UUID, log logger.ILogger) *Client {
	return &Client{
		ID:         uuid.New(),
		Hub:        hub,
		Conn:       conn,
		DocumentID: documentID,
		UserID:     userID,
		Send:       make(chan []byte, 64),
		closed:     make(chan struct{}),
		logger:     log,
	}
}

// trySend queues msg without blocking. It reports false when the buffer is
// full or the session is gone.
func (c *Client) trySend(msg []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case <-c.closed:
		return false
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// Reply queues msg for this session only.
func (c *Client) Reply(msg []byte) bool {
	return c.trySend(msg)
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// readPump hands every text frame to handle until the connection drops.
func (c *Client) readPump(handle MessageHandler) {
	defer func() {
		c.shutdown()
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("EditorSession", "Unexpected close", map[string]interface{}{
					"document_id": c.DocumentID.String(),
					"error":       err.Error(),
				})
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		handle(c, data)
	}
}

// writePump writes queued messages, one frame each, and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
