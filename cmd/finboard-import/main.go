// Command finboard-import loads a financial record JSON file into the SQLite
// store used by DATA_BACKEND=sqlite.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"finboard/internal/cli"
	applog "finboard/internal/log"
	"finboard/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentStorage)

	file := flag.String("file", envOr("DATA_FILE", "data.json"), "financial record JSON file")
	dbPath := flag.String("db", envOr("SQLITE_DB_PATH", "./data/finboard.db"), "SQLite database path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := importFile(ctx, *file, *dbPath, logger); err != nil {
		logger.Error("Import failed", applog.FieldOperation, applog.OpImport, applog.FieldError, err)
		os.Exit(1)
	}
}

func importFile(ctx context.Context, file, dbPath string, logger *applog.Logger) error {
	doc, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Import(ctx, doc); err != nil {
		return err
	}
	at, err := repo.ImportedAt(ctx)
	if err != nil {
		return err
	}

	logger.Info("Financial record imported",
		applog.FieldOperation, applog.OpImport,
		"file", file,
		"db", dbPath,
		"imported_at", at.Format(time.RFC3339))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
