package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"rich-text-bridge/internal/pkg/logger"
	"rich-text-bridge/internal/pkg/serverutils"
	"rich-text-bridge/internal/service"
	internalWS "rich-text-bridge/internal/websocket"
	"rich-text-bridge/pkg/events"
	pktNats "rich-text-bridge/pkg/nats"
	"rich-text-bridge/pkg/richtext"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const editTimeout = 10 * time.Second

// EventSubscriber is the part of the NATS subscriber the editor needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

// EditorHandler serves live editing sessions. The editor sends its tree,
// the handler converts it back to the stored format and tells every other
// session of the document about the change.
type EditorHandler struct {
	documentService service.IDocumentService
	hub             *internalWS.Hub
	jwtSecret       string
	logger          logger.ILogger
}

func NewEditorHandler(documentService service.IDocumentService, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *EditorHandler {
	return &EditorHandler{
		documentService: documentService,
		hub:             hub,
		jwtSecret:       jwtSecret,
		logger:          log,
	}
}

func (h *EditorHandler) RegisterRoutes(r fiber.Router) {
	editor := r.Group("/editor/v1")
	editor.Get(":id/ws", h.ServeWs)
}

// ServeWs authenticates the handshake and opens a session on the document.
func (h *EditorHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on the upgrade request, so the query wins.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	userID, err := serverutils.ParseUserToken(tokenStr, h.jwtSecret)
	if err != nil {
		h.logger.Warn("EditorHandler", "Invalid token in handshake", nil)
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	documentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid document id"))
	}

	if _, err := h.documentService.Show(c.UserContext(), userID, documentID); err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		details := map[string]interface{}{
			"document_id": documentID.String(),
			"user_id":     userID.String(),
		}
		h.logger.Info("EditorHandler", "Session opened", details)
		internalWS.ServeWs(h.hub, conn, documentID, userID, h.logger, h.HandleMessage)
		h.logger.Info("EditorHandler", "Session closed", details)
	})(c)
}

// HandleMessage processes one frame of a session.
func (h *EditorHandler) HandleMessage(c *internalWS.Client, data []byte) {
	var msg internalWS.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Reply(internalWS.Encode(internalWS.ServerMessage{Type: internalWS.MessageError, Message: "Malformed message"}))
		return
	}

	switch msg.Type {
	case internalWS.MessageEdit:
		h.applyEdit(c, msg.Doc)
	default:
		c.Reply(internalWS.Encode(internalWS.ServerMessage{Type: internalWS.MessageError, Message: "Unknown message type"}))
	}
}

func (h *EditorHandler) applyEdit(c *internalWS.Client, doc json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), editTimeout)
	defer cancel()

	details := map[string]interface{}{
		"document_id": c.DocumentID.String(),
		"user_id":     c.UserID.String(),
	}

	res, err := h.documentService.ApplyEdit(ctx, c.UserID, c.DocumentID, doc)
	if err != nil {
		details["error"] = err.Error()
		h.logger.Warn("EditorHandler", "Edit rejected", details)
		c.Reply(internalWS.Encode(internalWS.ServerMessage{Type: internalWS.MessageError, Message: editErrorMessage(err)}))
		return
	}

	details["word_count"] = res.Stats.Words
	h.logger.Info("EditorHandler", "Edit applied", details)

	stats := res.Stats
	c.Reply(internalWS.Encode(internalWS.ServerMessage{Type: internalWS.MessageSaved, Document: res.Document, Stats: &stats}))
	h.hub.Publish(ctx, c.DocumentID, c, internalWS.Encode(internalWS.ServerMessage{Type: internalWS.MessageRemoteUpdate, Document: res.Document}))
}

func editErrorMessage(err error) string {
	switch {
	case errors.Is(err, serverutils.ErrNotFound):
		return "Document not found"
	case errors.Is(err, richtext.ErrMaxDepthExceeded):
		return "Document is nested too deeply"
	case errors.Is(err, richtext.ErrNilDocument), errors.Is(err, richtext.ErrInvalidDocument):
		return "Document is not a valid editor tree"
	case errors.Is(err, serverutils.ErrBadRequest), errors.Is(err, serverutils.ErrUnprocessable):
		return err.Error()
	default:
		return "Failed to save document"
	}
}

// ListenDocumentEvents forwards changes made through the REST API to open
// editor sessions. Editor-originated changes are already fanned out.
func (h *EditorHandler) ListenDocumentEvents(ctx context.Context, sub EventSubscriber) error {
	if err := sub.Subscribe(ctx, events.DocumentUpdated, "editor-sessions-updated", h.OnDocumentEvent); err != nil {
		return err
	}
	return sub.Subscribe(ctx, events.DocumentDeleted, "editor-sessions-deleted", h.OnDocumentEvent)
}

func (h *EditorHandler) OnDocumentEvent(ctx context.Context, evt events.Event) error {
	payload := evt.Payload()
	if origin, _ := payload["origin"].(string); origin == events.OriginEditor {
		return nil
	}

	documentID, ok := events.DocumentIdOf(evt)
	if !ok {
		return nil
	}

	if evt.EventType() == events.DocumentDeleted {
		h.hub.Publish(ctx, documentID, nil, internalWS.Encode(internalWS.ServerMessage{Type: internalWS.MessageDeleted}))
		return nil
	}

	userIDStr, _ := payload["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil
	}

	doc, err := h.documentService.Show(ctx, userID, documentID)
	if err != nil {
		if errors.Is(err, serverutils.ErrNotFound) {
			return nil
		}
		return err
	}

	h.hub.Publish(ctx, documentID, nil, internalWS.Encode(internalWS.ServerMessage{Type: internalWS.MessageRemoteUpdate, Document: doc.Content}))
	return nil
}
