package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"finboard/internal/core"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `{"assets":{"cash":100},"credit_score":700}`)
	l := New(path)

	rec, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec.CreditScore != 700 {
		t.Errorf("CreditScore = %d", rec.CreditScore)
	}

	// Each call re-reads the file.
	if err := os.WriteFile(path, []byte(`{"credit_score":650}`), 0o600); err != nil {
		t.Fatal(err)
	}
	rec, err = l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec.CreditScore != 650 {
		t.Errorf("CreditScore after rewrite = %d, want 650", rec.CreditScore)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.json"), core.ErrRecordUnavailable},
		{"malformed json", writeFile(t, `{"assets":`), core.ErrRecordMalformed},
		{"wrong shape", writeFile(t, `{"liabilities":"lots"}`), core.ErrRecordMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.path).Load(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(writeFile(t, `{}`)).Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}
