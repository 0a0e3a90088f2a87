package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentCreated = "DOCUMENT_CREATED"
	DocumentUpdated = "DOCUMENT_UPDATED"
	DocumentDeleted = "DOCUMENT_DELETED"
)

// Origins of a document change, carried in the "origin" payload field.
const (
	OriginAPI    = "api"
	OriginEditor = "editor"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// DocumentChange is the payload of every document event.
type DocumentChange struct {
	DocumentId    uuid.UUID
	UserId        uuid.UUID
	Origin        string
	WordCount     int
	Entries       []string
	Assets        []string
	InlineEntries []string
}

func NewDocumentEvent(eventType string, change DocumentChange) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"document_id":    change.DocumentId.String(),
			"user_id":        change.UserId.String(),
			"origin":         change.Origin,
			"word_count":     change.WordCount,
			"entries":        nonNil(change.Entries),
			"assets":         nonNil(change.Assets),
			"inline_entries": nonNil(change.InlineEntries),
		},
		OccurredAt: time.Now(),
	}
}

// DocumentIdOf reads document_id back from a decoded payload.
func DocumentIdOf(e Event) (uuid.UUID, bool) {
	raw, ok := e.Payload()["document_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
