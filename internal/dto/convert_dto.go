package dto

import (
	"encoding/json"

	"rich-text-bridge/pkg/policy"
	"rich-text-bridge/pkg/richtext"
)

type ToTargetRequest struct {
	Document     json.RawMessage `json:"document" validate:"required"`
	NativeEmbeds bool            `json:"native_embeds"`
}

type ToSourceRequest struct {
	Document    json.RawMessage            `json:"document" validate:"required"`
	FieldConfig *policy.FieldConfiguration `json:"field_config"`
}

type ValidateDocumentRequest struct {
	Document json.RawMessage `json:"document"`
}

type ValidateDocumentResponse struct {
	Valid bool `json:"valid"`
}

type AnalyzeDocumentRequest struct {
	Document json.RawMessage `json:"document" validate:"required"`
}

type BuildEmbedRequest struct {
	Kind         string          `validate:"required,oneof=entry asset inline"`
	Result       json.RawMessage `json:"result"`
	NativeEmbeds bool            `json:"native_embeds"`
}

// BuildEmbedResponse has a nil Node when the picker was cancelled.
type BuildEmbedResponse struct {
	Inserted bool                 `json:"inserted"`
	Node     *richtext.TargetNode `json:"node"`
}
