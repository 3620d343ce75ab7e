// Package main provides a one-shot tool to migrate a legacy CookBook
// database into the server's store.
//
// This reads seasons, categories and recipes from the old Core Data sqlite
// file, maps them onto the current schema and optionally exports embedded
// photos as files.
//
// Usage:
//
//	go run ./cmd/migrate --legacy-db ~/old/CookBook.sqlite --data-path ~/cookbook
//	LEGACY_DB_PATH=~/old/CookBook.sqlite go run ./cmd/migrate
//
// Photos always export after the row migration, to LEGACY_PHOTO_EXPORT_PATH
// (default: {data}/photos).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cookbookapp/cookbook-server/internal/config"
	"github.com/cookbookapp/cookbook-server/internal/legacy"
	"github.com/cookbookapp/cookbook-server/internal/logger"
	"github.com/cookbookapp/cookbook-server/internal/store/sqlite"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Legacy.DatabasePath == "" {
		fmt.Fprintln(os.Stderr, "No legacy database given. Set --legacy-db or LEGACY_DB_PATH.")
		os.Exit(1)
	}

	logg := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	reader, err := legacy.OpenReader(cfg.Legacy.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open legacy database: %v", err)
	}
	defer reader.Close()

	dbPath := filepath.Join(cfg.Data.BasePath, "cookbook.db")
	dest, err := sqlite.Open(dbPath, logg.Logger)
	if err != nil {
		log.Fatalf("Failed to open destination database: %v", err)
	}
	defer dest.Close()

	ctx := context.Background()

	importer := legacy.NewImporter(reader, dest, logg.Logger)
	result, err := importer.Run(ctx)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	fmt.Printf("Migrated %d seasons, %d categories, %d recipes in %s\n",
		result.SeasonsImported, result.CategoriesImported, result.RecipesImported, result.Duration)

	if len(result.Skipped) > 0 {
		fmt.Printf("Skipped %d rows:\n", len(result.Skipped))
		for _, d := range result.Skipped {
			fmt.Printf("  legacy id %d: %s\n", d.LegacyID, d.Reason)
		}
	}

	if len(result.Dangling) > 0 {
		fmt.Printf("Resolved %d dangling references to defaults:\n", len(result.Dangling))
		for _, d := range result.Dangling {
			fmt.Printf("  legacy id %d: %s reference %d not found\n", d.LegacyID, d.Field, d.Ref)
		}
	}

	count, err := reader.ExportPhotos(ctx, cfg.Legacy.PhotoExportPath)
	if err != nil {
		log.Fatalf("Photo export failed: %v", err)
	}
	fmt.Printf("Exported %d photos to %s\n", count, cfg.Legacy.PhotoExportPath)
}
