package entity

import (
	"encoding/json"
	"time"

	"rich-text-bridge/pkg/policy"

	"github.com/google/uuid"
)

type Document struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	Title           string
	Content         json.RawMessage
	PlainText       string
	WordCount       int
	EmbeddedEntries []string
	EmbeddedAssets  []string
	InlineEntries   []string
	FieldConfig     *policy.FieldConfiguration
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
	IsDeleted       bool
}
