// Package store declares the ports through which handlers and the chat
// orchestrator read the financial record.
package store

import (
	"context"

	"finboard/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordLoader returns the current financial record. Implementations
	// read from their backing source on every call.
	RecordLoader interface {
		Load(ctx context.Context) (core.FinancialRecord, error)
	}

	// RecordImporter replaces the stored record with document.
	RecordImporter interface {
		Import(ctx context.Context, document []byte) error
	}
)
