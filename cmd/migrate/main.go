package main

import (
	"log"

	"rich-text-bridge/internal/config"
	"rich-text-bridge/internal/model"
	"rich-text-bridge/pkg/database"

	"gorm.io/gorm"
)

type step struct {
	name string
	sql  []string
}

// gen_random_uuid() lives in pgcrypto before Postgres 13.
var extensions = step{
	name: "extensions",
	sql:  []string{`CREATE EXTENSION IF NOT EXISTS pgcrypto;`},
}

// Reference filters on the document list use jsonb containment.
var referenceIndexes = step{
	name: "reference indexes",
	sql: []string{
		`CREATE INDEX IF NOT EXISTS idx_documents_embedded_entries ON documents USING GIN (embedded_entries jsonb_path_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_embedded_assets ON documents USING GIN (embedded_assets jsonb_path_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_inline_entries ON documents USING GIN (inline_entries jsonb_path_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_user_created ON documents (user_id, created_at DESC) WHERE deleted_at IS NULL;`,
	},
}

func runStep(db *gorm.DB, s step) {
	log.Printf("Applying %s", s.name)
	for _, stmt := range s.sql {
		if err := db.Exec(stmt).Error; err != nil {
			log.Printf("Warn: %s: %v", s.name, err)
		}
	}
}

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatalf("Error: failed to connect to database: %v", err)
	}

	runStep(db, extensions)

	log.Println("Applying schema")
	if err := db.AutoMigrate(&model.Document{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	runStep(db, referenceIndexes)

	log.Println("Database migration completed")
}
