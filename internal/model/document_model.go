package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id              uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Title           string                      `gorm:"type:varchar(255);not null"`
	Content         datatypes.JSON              `gorm:"type:jsonb;not null"`
	PlainText       string                      `gorm:"type:text"`
	WordCount       int                         `gorm:"not null;default:0"`
	EmbeddedEntries datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	EmbeddedAssets  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	InlineEntries   datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	FieldConfig     datatypes.JSON              `gorm:"type:jsonb"`
	CreatedAt       time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt       time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt              `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
