package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	insertAudit = `
INSERT OR IGNORE INTO chat_audit
    (id, request_id, permissions, disclosed_fields, outcome, suggestion_count, reply_chars, duration_ms, occurred_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	countAuditByOutcome = `SELECT outcome, COUNT(*) FROM chat_audit GROUP BY outcome`
)

// ChatAudit is one stored chat exchange. It never carries message or reply
// text.
type ChatAudit struct {
	ID              string
	RequestID       string
	Permissions     []string
	DisclosedFields []string
	Outcome         string
	SuggestionCount int
	ReplyChars      int
	DurationMs      int64
	OccurredAt      time.Time
}

// RecordChatAudit stores entry. Redelivered entries with a known ID are
// ignored, so the call reports whether a row was written.
func (r *SQLiteRepository) RecordChatAudit(ctx context.Context, entry ChatAudit) (bool, error) {
	permissions, err := jsonList(entry.Permissions)
	if err != nil {
		return false, fmt.Errorf("encode permissions: %w", err)
	}
	disclosed, err := jsonList(entry.DisclosedFields)
	if err != nil {
		return false, fmt.Errorf("encode disclosed fields: %w", err)
	}

	res, err := r.db.ExecContext(ctx, insertAudit,
		entry.ID,
		entry.RequestID,
		permissions,
		disclosed,
		entry.Outcome,
		entry.SuggestionCount,
		entry.ReplyChars,
		entry.DurationMs,
		entry.OccurredAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("insert chat audit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ChatAuditCounts returns the number of stored exchanges per outcome.
func (r *SQLiteRepository) ChatAuditCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, countAuditByOutcome)
	if err != nil {
		return nil, fmt.Errorf("count chat audit: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan chat audit count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// jsonList encodes names as a JSON array; nil becomes [].
func jsonList(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
