package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"rich-text-bridge/internal/config"
	"rich-text-bridge/internal/pkg/logger"
	"rich-text-bridge/internal/repository/implementation"
	"rich-text-bridge/internal/repository/specification"
	"rich-text-bridge/pkg/database"
	"rich-text-bridge/pkg/render"
	"rich-text-bridge/pkg/richtext"

	"github.com/google/uuid"
)

func main() {
	idFlag := flag.String("id", "", "document id")
	logLimit := flag.Int("logs", 10, "number of editor log entries to show")
	flag.Parse()

	documentID, err := uuid.Parse(*idFlag)
	if err != nil {
		log.Fatal("Error: -id must be a document uuid")
	}

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	repo := implementation.NewDocumentRepository(db)
	document, err := repo.FindOne(context.Background(), specification.ByID{ID: documentID})
	if err != nil {
		log.Fatal("Error: Failed to load document:", err)
	}
	if document == nil {
		log.Fatal("Document not found:", documentID)
	}

	fmt.Printf("INSPECTING DOCUMENT: %s (%s)\n", document.Title, document.Id)
	fmt.Printf("Raw Content Length: %d bytes\n", len(document.Content))

	// Damaged content is still shown raw so it can be repaired by hand.
	if doc, err := richtext.ParseSource(document.Content); err != nil {
		fmt.Printf("Warn: stored content is not a rich text document: %v\n", err)
	} else {
		stats := richtext.Analyze(doc)
		fmt.Printf("Words: %d (stored %d)  Characters: %d  Blocks: %d\n", stats.Words, document.WordCount, stats.Characters, stats.Blocks)
		fmt.Printf("Embedded entries: %v  assets: %v  inline: %v\n", stats.Embedded.Entries, stats.Embedded.Assets, stats.Embedded.InlineEntries)
	}

	fmt.Println("\n--- RENDERED CONTENT ---")
	fmt.Println(render.ParseContent(string(document.Content)))
	fmt.Println("--- END CONTENT ---")

	entries, err := logger.ReadLogs(cfg.App.EditorLogFilePath, logger.LogFilter{
		DocumentId: documentID.String(),
		Limit:      *logLimit,
	})
	if err != nil {
		log.Printf("Warn: Failed to read editor log: %v", err)
		return
	}

	fmt.Printf("\n--- LAST %d EDITOR EVENTS ---\n", len(entries))
	for _, e := range entries {
		fmt.Printf("%s [%s] %s %v\n", e.Timestamp, e.Level, e.Message, e.Details)
	}
}
