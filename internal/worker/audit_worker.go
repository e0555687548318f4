// Package worker consumes chat audit events and persists them.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"finboard/internal/amqp"
	applog "finboard/internal/log"
	"finboard/internal/storage"
)

// AuditStore is where audit events end up.
type AuditStore interface {
	RecordChatAudit(ctx context.Context, entry storage.ChatAudit) (bool, error)
}

// AuditWorker turns audit messages into stored rows.
type AuditWorker struct {
	store  AuditStore
	logger *applog.Logger

	handled    atomic.Int64
	duplicates atomic.Int64
	failures   atomic.Int64
}

func NewAuditWorker(store AuditStore, logger *applog.Logger) *AuditWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &AuditWorker{store: store, logger: logger.WithComponent(applog.ComponentAudit)}
}

// HandleAuditMessage stores one audit event. A returned error makes the
// consumer requeue the message.
func (w *AuditWorker) HandleAuditMessage(ctx context.Context, msg *amqp.ChatAuditMessage) error {
	written, err := w.store.RecordChatAudit(ctx, storage.ChatAudit{
		ID:              msg.ID,
		RequestID:       msg.RequestID,
		Permissions:     msg.Permissions,
		DisclosedFields: msg.DisclosedFields,
		Outcome:         msg.Outcome,
		SuggestionCount: msg.SuggestionCount,
		ReplyChars:      msg.ReplyChars,
		DurationMs:      msg.DurationMs,
		OccurredAt:      msg.Timestamp,
	})
	if err != nil {
		w.failures.Add(1)
		return fmt.Errorf("record chat audit %s: %w", msg.ID, err)
	}

	if !written {
		w.duplicates.Add(1)
		w.logger.DebugContext(ctx, "Duplicate audit message ignored", "id", msg.ID)
		return nil
	}

	w.handled.Add(1)
	w.logger.InfoContext(ctx, "Chat audit recorded",
		"id", msg.ID,
		applog.FieldRequestID, msg.RequestID,
		"outcome", msg.Outcome,
		applog.FieldPermissions, msg.Permissions,
		applog.FieldDisclosedFields, msg.DisclosedFields,
		applog.FieldDuration, msg.DurationMs)
	return nil
}

// Stats reports handled, duplicate and failed message counts.
func (w *AuditWorker) Stats() (handled, duplicates, failures int64) {
	return w.handled.Load(), w.duplicates.Load(), w.failures.Load()
}
