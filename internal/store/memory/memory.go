// Package memory holds a financial record in process, for tests and tools
// that already have the document in hand.
package memory

import (
	"context"
	"sync"

	"finboard/internal/core"
)

type Store struct {
	mu  sync.Mutex
	doc []byte
	err error
}

// New parses document up front so a bad fixture fails at construction.
func New(document []byte) (*Store, error) {
	if _, err := core.ParseFinancialRecord(document); err != nil {
		return nil, err
	}
	return &Store{doc: append([]byte(nil), document...)}, nil
}

// Failing returns a store whose Load always fails with err.
func Failing(err error) *Store {
	return &Store{err: err}
}

// Load parses a fresh copy of the stored document each time.
func (s *Store) Load(_ context.Context) (core.FinancialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.FinancialRecord{}, s.err
	}
	return core.ParseFinancialRecord(s.doc)
}

// Import replaces the stored document.
func (s *Store) Import(_ context.Context, document []byte) error {
	if _, err := core.ParseFinancialRecord(document); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = append([]byte(nil), document...)
	s.err = nil
	return nil
}
