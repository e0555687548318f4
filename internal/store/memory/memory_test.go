package memory

import (
	"context"
	"errors"
	"testing"

	"finboard/internal/core"
)

func TestStore(t *testing.T) {
	s, err := New([]byte(`{"credit_score":710}`))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rec, err := s.Load(context.Background())
	if err != nil || rec.CreditScore != 710 {
		t.Fatalf("Load() = %v, %v", rec.CreditScore, err)
	}

	if err := s.Import(context.Background(), []byte(`not json`)); !errors.Is(err, core.ErrRecordMalformed) {
		t.Errorf("Import(bad) error = %v", err)
	}
	if err := s.Import(context.Background(), []byte(`{"credit_score":720}`)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	rec, _ = s.Load(context.Background())
	if rec.CreditScore != 720 {
		t.Errorf("CreditScore = %d, want 720", rec.CreditScore)
	}
}

func TestFailing(t *testing.T) {
	_, err := Failing(core.ErrRecordUnavailable).Load(context.Background())
	if !errors.Is(err, core.ErrRecordUnavailable) {
		t.Errorf("Load() error = %v", err)
	}
}
