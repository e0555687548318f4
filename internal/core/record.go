// Package core holds the financial record served by the dashboard and the
// error kinds shared by the loaders, the chat orchestrator and the handlers.
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

var maxCreditScore = decimal.NewFromInt(math.MaxInt32)

// Top-level field names of the record document.
const (
	FieldAssets       = "assets"
	FieldLiabilities  = "liabilities"
	FieldCreditScore  = "credit_score"
	FieldEPFBalance   = "epf_balance"
	FieldTransactions = "transactions"

	GroupInvestments = "investments"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrRecordUnavailable = errors.New("financial record unavailable")
	ErrRecordMalformed   = errors.New("financial record malformed")
	ErrGeneration        = errors.New("text generation failed")
)

type (
	// Amounts maps a name to a monetary value.
	Amounts map[string]decimal.Decimal

	// Assets splits the assets mapping into plain categories and nested
	// groups such as "investments".
	Assets struct {
		Categories Amounts
		Groups     map[string]Amounts
	}

	// Transaction is opaque: whatever keys the document carries.
	Transaction map[string]any

	FinancialRecord struct {
		Assets       Assets
		Liabilities  Amounts
		CreditScore  int
		EPFBalance   decimal.Decimal
		Transactions []Transaction

		fields map[string]json.RawMessage
	}
)

// ParseFinancialRecord decodes a record document. Any decoding problem is
// reported as ErrRecordMalformed.
func ParseFinancialRecord(data []byte) (FinancialRecord, error) {
	var rec FinancialRecord
	if err := json.Unmarshal(data, &rec.fields); err != nil {
		return FinancialRecord{}, fmt.Errorf("%w: %v", ErrRecordMalformed, err)
	}
	if rec.fields == nil {
		return FinancialRecord{}, fmt.Errorf("%w: document is null", ErrRecordMalformed)
	}

	if raw, ok := rec.fields[FieldAssets]; ok {
		if err := json.Unmarshal(raw, &rec.Assets); err != nil {
			return FinancialRecord{}, fmt.Errorf("%w: %s: %v", ErrRecordMalformed, FieldAssets, err)
		}
	}
	if raw, ok := rec.fields[FieldLiabilities]; ok {
		if err := json.Unmarshal(raw, &rec.Liabilities); err != nil {
			return FinancialRecord{}, fmt.Errorf("%w: %s: %v", ErrRecordMalformed, FieldLiabilities, err)
		}
	}
	if raw, ok := rec.fields[FieldCreditScore]; ok {
		var score json.Number
		if err := json.Unmarshal(raw, &score); err != nil {
			return FinancialRecord{}, fmt.Errorf("%w: %s: %v", ErrRecordMalformed, FieldCreditScore, err)
		}
		d, err := decimal.NewFromString(score.String())
		if err != nil {
			return FinancialRecord{}, fmt.Errorf("%w: %s: %v", ErrRecordMalformed, FieldCreditScore, err)
		}
		if !d.IsInteger() || d.Abs().GreaterThan(maxCreditScore) {
			return FinancialRecord{}, fmt.Errorf("%w: %s: %s is not a whole number in range", ErrRecordMalformed, FieldCreditScore, score)
		}
		rec.CreditScore = int(d.IntPart())
	}
	if raw, ok := rec.fields[FieldEPFBalance]; ok {
		if err := json.Unmarshal(raw, &rec.EPFBalance); err != nil {
			return FinancialRecord{}, fmt.Errorf("%w: %s: %v", ErrRecordMalformed, FieldEPFBalance, err)
		}
	}
	if raw, ok := rec.fields[FieldTransactions]; ok {
		if err := json.Unmarshal(raw, &rec.Transactions); err != nil {
			return FinancialRecord{}, fmt.Errorf("%w: %s: %v", ErrRecordMalformed, FieldTransactions, err)
		}
	}
	return rec, nil
}

// UnmarshalJSON accepts numbers as categories and objects of numbers as
// groups. Anything else is rejected.
func (a *Assets) UnmarshalJSON(data []byte) error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	a.Categories = Amounts{}
	a.Groups = map[string]Amounts{}
	for name, raw := range entries {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '{' {
			var group Amounts
			if err := json.Unmarshal(raw, &group); err != nil {
				return fmt.Errorf("group %q: %w", name, err)
			}
			a.Groups[name] = group
			continue
		}
		var v decimal.Decimal
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		a.Categories[name] = v
	}
	return nil
}

// Investments returns the nested investments group, empty when absent.
func (a Assets) Investments() Amounts {
	if g, ok := a.Groups[GroupInvestments]; ok {
		return g
	}
	return Amounts{}
}

// Total is the exact sum of every value under assets, nested groups included.
func (a Assets) Total() decimal.Decimal {
	total := a.Categories.Total()
	for _, g := range a.Groups {
		total = total.Add(g.Total())
	}
	return total
}

// Total is the exact sum of all values.
func (m Amounts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// Names returns the keys in lexical order for stable rendering.
func (m Amounts) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the document carries the given top-level field.
func (r FinancialRecord) Has(field string) bool {
	_, ok := r.fields[field]
	return ok
}

// Fields returns the top-level field names in lexical order.
func (r FinancialRecord) Fields() []string {
	names := make([]string, 0, len(r.fields))
	for k := range r.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Disclose returns the raw top-level fields named in permissions that exist
// on the record. Unknown names are ignored and duplicates collapse. The
// result is never nil.
func (r FinancialRecord) Disclose(permissions []string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(permissions))
	for _, key := range permissions {
		if raw, ok := r.fields[key]; ok {
			out[key] = raw
		}
	}
	return out
}
