// Package storage keeps the financial record document and the chat audit
// trail in SQLite. The record table holds at most one row; Import replaces it
// and Load reads it back.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finboard/internal/core"

	_ "modernc.org/sqlite"
)

const (
	selectDocument = `SELECT document FROM financial_record WHERE id = 1`
	selectImported = `SELECT imported_at FROM financial_record WHERE id = 1`
	upsertDocument = `
INSERT INTO financial_record (id, document, imported_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET document = excluded.document, imported_at = excluded.imported_at`
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements store.RecordLoader. A database without an imported
// document is ErrRecordUnavailable.
func (r *SQLiteRepository) Load(ctx context.Context) (core.FinancialRecord, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, selectDocument).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FinancialRecord{}, fmt.Errorf("%w: no document imported", core.ErrRecordUnavailable)
	}
	if err != nil {
		return core.FinancialRecord{}, fmt.Errorf("%w: %v", core.ErrRecordUnavailable, err)
	}
	return core.ParseFinancialRecord([]byte(doc))
}

// Import implements store.RecordImporter. The document is parsed first so a
// malformed file never replaces a good one.
func (r *SQLiteRepository) Import(ctx context.Context, document []byte) error {
	if _, err := core.ParseFinancialRecord(document); err != nil {
		return err
	}
	stamp := r.now().UTC().Format(time.RFC3339)
	if _, err := r.db.ExecContext(ctx, upsertDocument, string(document), stamp); err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}

// ImportedAt reports when the current document was imported.
func (r *SQLiteRepository) ImportedAt(ctx context.Context) (time.Time, error) {
	var stamp string
	err := r.db.QueryRowContext(ctx, selectImported).Scan(&stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: no document imported", core.ErrRecordUnavailable)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read import time: %w", err)
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse import time %q: %w", stamp, err)
	}
	return t, nil
}
