package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"rich-text-bridge/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const RedisChannel = "editor_events"

// envelope is what travels over Redis between instances.
type envelope struct {
	InstanceID string          `json:"instance_id"`
	DocumentID string          `json:"document_id"`
	SenderID   string          `json:"sender_id"`
	Message    json.RawMessage `json:"message"`
}

// Hub groups editor sessions by document and fans messages out to every
// other session of the same document, locally and through Redis.
type Hub struct {
	instanceID string

	// Registered clients: DocumentID -> sessions.
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Nil when running single-instance.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		instanceID: uuid.NewString(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.DocumentID] = append(h.clients[client.DocumentID], client)
			h.mu.Unlock()
			h.logger.Info("EditorHub", "Session joined", map[string]interface{}{
				"document_id": client.DocumentID.String(),
				"user_id":     client.UserID.String(),
			})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.clients[client.DocumentID]
	if !ok {
		return
	}
	for i, c := range sessions {
		if c == client {
			h.clients[client.DocumentID] = append(sessions[:i], sessions[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.DocumentID]) == 0 {
		delete(h.clients, client.DocumentID)
		h.logger.Info("EditorHub", "Last session left", map[string]interface{}{"document_id": client.DocumentID.String()})
	}
}

// Register adds a session; Run must be running.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Sessions reports how many local sessions edit the document.
func (h *Hub) Sessions(documentID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[documentID])
}

// Publish delivers msg to every session of the document except the sender.
// A nil sender reaches all sessions.
func (h *Hub) Publish(ctx context.Context, documentID uuid.UUID, sender *Client, msg []byte) {
	senderID := ""
	if sender != nil {
		senderID = sender.ID.String()
	}
	h.deliver(documentID, senderID, msg)

	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(envelope{
		InstanceID: h.instanceID,
		DocumentID: documentID.String(),
		SenderID:   senderID,
		Message:    msg,
	})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(ctx, RedisChannel, payload).Err(); err != nil {
		h.logger.Warn("EditorHub", "Failed to publish to Redis", map[string]interface{}{
			"document_id": documentID.String(),
			"error":       err.Error(),
		})
	}
}

func (h *Hub) deliver(documentID uuid.UUID, senderID string, msg []byte) {
	h.mu.RLock()
	sessions := append([]*Client(nil), h.clients[documentID]...)
	h.mu.RUnlock()

	for _, client := range sessions {
		if client.ID.String() == senderID {
			continue
		}
		if !client.trySend(msg) {
			h.logger.Warn("EditorHub", "Session send buffer full, dropping session", map[string]interface{}{
				"document_id": documentID.String(),
				"user_id":     client.UserID.String(),
			})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, RedisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			h.logger.Warn("EditorHub", "Dropping malformed Redis message", map[string]interface{}{"error": err.Error()})
			continue
		}
		if env.InstanceID == h.instanceID {
			continue
		}
		documentID, err := uuid.Parse(env.DocumentID)
		if err != nil {
			continue
		}
		h.deliver(documentID, env.SenderID, env.Message)
	}
}
