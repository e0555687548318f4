package core

import (
	"fmt"
	"sort"
)

// TransactionColumns returns the sorted union of keys across transactions.
func TransactionColumns(txs []Transaction) []string {
	seen := map[string]struct{}{}
	var cols []string
	for _, tx := range txs {
		for k := range tx {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return cols
}

// Cell renders one transaction value for display. Missing keys render empty.
func (t Transaction) Cell(column string) string {
	v, ok := t[column]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(val)
	}
}
