// Package file loads the financial record from a JSON document on disk.
package file

import (
	"context"
	"fmt"
	"os"

	"finboard/internal/core"
)

// Loader re-reads Path on every Load.
type Loader struct {
	Path string
}

func New(path string) *Loader {
	return &Loader{Path: path}
}

// Load reads and parses the document. I/O problems are ErrRecordUnavailable
// and decoding problems are ErrRecordMalformed.
func (l *Loader) Load(ctx context.Context) (core.FinancialRecord, error) {
	if err := ctx.Err(); err != nil {
		return core.FinancialRecord{}, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return core.FinancialRecord{}, fmt.Errorf("%w: %v", core.ErrRecordUnavailable, err)
	}
	return core.ParseFinancialRecord(data)
}
