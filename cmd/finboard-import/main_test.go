package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/storage"
)

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data.json")
	db := filepath.Join(dir, "finboard.db")
	if err := os.WriteFile(file, []byte(`{"assets":{"cash":250},"credit_score":700}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := importFile(context.Background(), file, db, applog.Discard()); err != nil {
		t.Fatalf("importFile() error = %v", err)
	}

	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	rec, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !rec.Has("credit_score") {
		t.Errorf("imported record lost credit_score: %+v", rec)
	}
}

func TestImportFileRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data.json")
	if err := os.WriteFile(file, []byte(`{not json`), 0o600); err != nil {
		t.Fatal(err)
	}

	err := importFile(context.Background(), file, filepath.Join(dir, "finboard.db"), applog.Discard())
	if !errors.Is(err, core.ErrRecordMalformed) {
		t.Fatalf("importFile() error = %v, want ErrRecordMalformed", err)
	}
}
