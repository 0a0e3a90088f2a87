package specification

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentOwnedByUser struct {
	UserID uuid.UUID
}

func (s DocumentOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("documents.user_id = ?", s.UserID)
}

type ByTitle struct {
	Title string
}

func (s ByTitle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title = ?", s.Title)
}

// ReferencingEntry matches documents that embed the entry as a block or
// inline.
type ReferencingEntry struct {
	EntryID string
}

func (s ReferencingEntry) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		db.Session(&gorm.Session{NewDB: true}).
			Where(datatypes.JSONArrayQuery("embedded_entries").Contains(s.EntryID)).
			Or(datatypes.JSONArrayQuery("inline_entries").Contains(s.EntryID)),
	)
}

type ReferencingAsset struct {
	AssetID string
}

func (s ReferencingAsset) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(datatypes.JSONArrayQuery("embedded_assets").Contains(s.AssetID))
}
