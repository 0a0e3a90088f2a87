package websocket

import (
	"encoding/json"

	"rich-text-bridge/pkg/richtext"
)

const (
	MessageEdit         = "edit"
	MessageSaved        = "saved"
	MessageError        = "error"
	MessageRemoteUpdate = "remote_update"
	MessageDeleted      = "deleted"
)

// ClientMessage is a frame sent by the editor.
type ClientMessage struct {
	Type string          `json:"type"`
	Doc  json.RawMessage `json:"doc"`
}

// ServerMessage is a frame sent to the editor.
type ServerMessage struct {
	Type     string          `json:"type"`
	Document interface{}     `json:"document,omitempty"`
	Stats    *richtext.Stats `json:"stats,omitempty"`
	Message  string          `json:"message,omitempty"`
}

func Encode(msg ServerMessage) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		data, _ = json.Marshal(ServerMessage{Type: MessageError, Message: "failed to encode message"})
	}
	return data
}
