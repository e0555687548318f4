package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with two decimals and comma thousands
// grouping, prefixed by symbol when given.
//
// Examples:
//	FormatAmount(1234567.891, "RM") -> "RM 1,234,567.89"
//	FormatAmount(-42, "")           -> "-42.00"
func FormatAmount(d decimal.Decimal, symbol string) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	if symbol != "" {
		return symbol + " " + out
	}
	return out
}
