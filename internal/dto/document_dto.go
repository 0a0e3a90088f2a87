package dto

import (
	"encoding/json"
	"time"

	"rich-text-bridge/pkg/policy"
	"rich-text-bridge/pkg/richtext"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title       string                     `json:"title" validate:"required,max=255"`
	Content     json.RawMessage            `json:"content"`
	FieldConfig *policy.FieldConfiguration `json:"field_config"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowDocumentResponse struct {
	Id        uuid.UUID                `json:"id"`
	Title     string                   `json:"title"`
	Content   json.RawMessage          `json:"content"`
	Editor    *richtext.TargetNode     `json:"editor"`
	Policy    policy.Policy            `json:"policy"`
	WordCount int                      `json:"word_count"`
	Embedded  richtext.EmbeddedContent `json:"embedded"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt *time.Time               `json:"updated_at"`
}

// UpdateDocumentRequest carries either a source document in Content or an
// editor tree in Editor. Editor wins when both are present.
type UpdateDocumentRequest struct {
	Id          uuid.UUID                  `json:"-"`
	Title       string                     `json:"title" validate:"required,max=255"`
	Content     json.RawMessage            `json:"content"`
	Editor      json.RawMessage            `json:"editor"`
	FieldConfig *policy.FieldConfiguration `json:"field_config"`
}

type UpdateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type ApplyEditResponse struct {
	Id       uuid.UUID            `json:"id"`
	Document *richtext.SourceNode `json:"document"`
	Stats    richtext.Stats       `json:"stats"`
}

type ExportDocumentRequest struct {
	Id     uuid.UUID `query:"-"`
	Format string    `query:"format" validate:"omitempty,oneof=markdown html"`
}

type ExportDocumentResponse struct {
	Id      uuid.UUID `json:"id"`
	Format  string    `json:"format"`
	Content string    `json:"content"`
}

type PublishAnalyzeDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

// ListDocumentsRequest filters the caller's documents. Entry matches block
// and inline references alike.
type ListDocumentsRequest struct {
	Title  string `query:"title" validate:"max=255"`
	Entry  string `query:"entry"`
	Asset  string `query:"asset"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type DocumentSummary struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	WordCount int        `json:"word_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int64             `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}
