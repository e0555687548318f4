package worker

import (
	"context"
	"errors"
	"testing"

	"finboard/internal/amqp"
	"finboard/internal/storage"
)

type fakeStore struct {
	seen map[string]storage.ChatAudit
	err  error
}

func (f *fakeStore) RecordChatAudit(_ context.Context, entry storage.ChatAudit) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = make(map[string]storage.ChatAudit)
	}
	if _, ok := f.seen[entry.ID]; ok {
		return false, nil
	}
	f.seen[entry.ID] = entry
	return true, nil
}

func TestHandleAuditMessage(t *testing.T) {
	store := &fakeStore{}
	w := NewAuditWorker(store, nil)
	msg := amqp.NewChatAuditMessage(amqp.OutcomeOK, []string{"credit_score"}, []string{"credit_score"})
	msg.SuggestionCount = 2

	for i := 0; i < 2; i++ {
		if err := w.HandleAuditMessage(context.Background(), msg); err != nil {
			t.Fatalf("HandleAuditMessage() error = %v", err)
		}
	}

	got, ok := store.seen[msg.ID]
	if !ok {
		t.Fatal("entry not stored")
	}
	if got.Outcome != amqp.OutcomeOK || got.SuggestionCount != 2 || !got.OccurredAt.Equal(msg.Timestamp) {
		t.Errorf("stored entry = %+v", got)
	}

	handled, dups, failures := w.Stats()
	if handled != 1 || dups != 1 || failures != 0 {
		t.Errorf("Stats() = %d, %d, %d; want 1, 1, 0", handled, dups, failures)
	}
}

func TestHandleAuditMessageStoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	w := NewAuditWorker(&fakeStore{err: boom}, nil)

	err := w.HandleAuditMessage(context.Background(), amqp.NewChatAuditMessage(amqp.OutcomeGenerationError, nil, nil))
	if !errors.Is(err, boom) {
		t.Fatalf("HandleAuditMessage() error = %v, want %v", err, boom)
	}
	if _, _, failures := w.Stats(); failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}
