package websocket

import (
	"rich-text-bridge/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs runs an editor session until the peer disconnects.
func ServeWs(hub *Hub, conn *websocket.Conn, documentID, userID uuid.UUID, log logger.ILogger, handle MessageHandler) {
	client := NewClient(hub, conn, documentID, userID, log)
	client.Hub.Register(client)

	go client.writePump()
	client.readPump(handle)
}
