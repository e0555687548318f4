package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Audit outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeGenerationError = "generation_error"
)

// ChatAuditMessage describes one chat exchange without its content: no
// message text, no reply text and no financial values.
type ChatAuditMessage struct {
	ID              string    `json:"id"`
	RequestID       string    `json:"request_id,omitempty"`
	Permissions     []string  `json:"permissions"`
	DisclosedFields []string  `json:"disclosed_fields"`
	Outcome         string    `json:"outcome"`
	SuggestionCount int       `json:"suggestion_count"`
	ReplyChars      int       `json:"reply_chars"`
	DurationMs      int64     `json:"duration_ms"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewChatAuditMessage stamps a fresh id and timestamp.
func NewChatAuditMessage(outcome string, permissions, disclosed []string) *ChatAuditMessage {
	if permissions == nil {
		permissions = []string{}
	}
	if disclosed == nil {
		disclosed = []string{}
	}
	return &ChatAuditMessage{
		ID:              uuid.NewString(),
		Permissions:     permissions,
		DisclosedFields: disclosed,
		Outcome:         outcome,
		Timestamp:       time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChatAuditMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChatAuditMessageFromJSON decodes a message and checks the fields a
// consumer relies on.
func ChatAuditMessageFromJSON(data []byte) (*ChatAuditMessage, error) {
	var msg ChatAuditMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", msg.ID, err)
	}
	switch msg.Outcome {
	case OutcomeOK, OutcomeGenerationError:
	default:
		return nil, fmt.Errorf("unknown outcome %q", msg.Outcome)
	}
	return &msg, nil
}
