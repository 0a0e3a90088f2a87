package mapper

import (
	"encoding/json"
	"time"

	"rich-text-bridge/internal/entity"
	"rich-text-bridge/internal/model"
	"rich-text-bridge/pkg/policy"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	// A malformed stored configuration falls back to the default policy.
	var fieldConfig *policy.FieldConfiguration
	if len(d.FieldConfig) > 0 && string(d.FieldConfig) != "null" {
		var cfg policy.FieldConfiguration
		if err := json.Unmarshal(d.FieldConfig, &cfg); err == nil {
			fieldConfig = &cfg
		}
	}

	return &entity.Document{
		Id:              d.Id,
		UserId:          d.UserId,
		Title:           d.Title,
		Content:         json.RawMessage(d.Content),
		PlainText:       d.PlainText,
		WordCount:       d.WordCount,
		EmbeddedEntries: nonNil(d.EmbeddedEntries),
		EmbeddedAssets:  nonNil(d.EmbeddedAssets),
		InlineEntries:   nonNil(d.InlineEntries),
		FieldConfig:     fieldConfig,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
		IsDeleted:       d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	var fieldConfig datatypes.JSON
	if d.FieldConfig != nil {
		if raw, err := json.Marshal(d.FieldConfig); err == nil {
			fieldConfig = datatypes.JSON(raw)
		}
	}

	return &model.Document{
		Id:              d.Id,
		UserId:          d.UserId,
		Title:           d.Title,
		Content:         datatypes.JSON(d.Content),
		PlainText:       d.PlainText,
		WordCount:       d.WordCount,
		EmbeddedEntries: datatypes.JSONSlice[string](nonNil(d.EmbeddedEntries)),
		EmbeddedAssets:  datatypes.JSONSlice[string](nonNil(d.EmbeddedAssets)),
		InlineEntries:   datatypes.JSONSlice[string](nonNil(d.InlineEntries)),
		FieldConfig:     fieldConfig,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

func (m *DocumentMapper) ToModels(docs []*entity.Document) []*model.Document {
	models := make([]*model.Document, len(docs))
	for i, d := range docs {
		models[i] = m.ToModel(d)
	}
	return models
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
