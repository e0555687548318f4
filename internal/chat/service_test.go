package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/store/memory"
)

const testDocument = `{
  "assets": {"cash": 1200.50, "investments": {"stocks": 5000}},
  "liabilities": {"car_loan": 15000},
  "credit_score": 742,
  "epf_balance": 88000,
  "transactions": [{"date": "2024-01-02", "amount": -20}]
}`

// recordingGenerator captures prompts and returns a canned answer.
type recordingGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (g *recordingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *recordingGenerator) lastPrompt(t *testing.T) string {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		t.Fatal("generator was not called")
	}
	return g.prompts[len(g.prompts)-1]
}

type fakeAudit struct {
	msgs []*amqp.ChatAuditMessage
	err  error
}

func (f *fakeAudit) PublishChatAudit(_ context.Context, msg *amqp.ChatAuditMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

func newLoader(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.New([]byte(testDocument))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// disclosedBlock returns the JSON between the --- fences of a prompt.
func disclosedBlock(t *testing.T, prompt string) string {
	t.Helper()
	_, rest, ok := strings.Cut(prompt, "allowed to see:\n---\n")
	if !ok {
		t.Fatalf("no data block in prompt:\n%s", prompt)
	}
	block, _, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		t.Fatalf("unterminated data block in prompt:\n%s", prompt)
	}
	return block
}

func TestChatEmptyPermissionsDisclosesNothing(t *testing.T) {
	gen := &recordingGenerator{reply: "No data.\n---SUGGESTIONS---\nA?\nB?\nC?"}
	svc := NewService(newLoader(t), gen)

	resp, err := svc.Chat(context.Background(), Request{Message: "How am I doing?", Permissions: []string{}})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got := disclosedBlock(t, gen.lastPrompt(t)); got != "{}" {
		t.Errorf("disclosed = %q, want {}", got)
	}
	if resp.Reply != "No data." || len(resp.Suggestions) != 3 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestChatMissingPermissionsDisclosesNothing(t *testing.T) {
	gen := &recordingGenerator{reply: "ok"}
	svc := NewService(newLoader(t), gen)

	if _, err := svc.Chat(context.Background(), Request{Message: "hi"}); err != nil {
		t.Fatal(err)
	}
	if got := disclosedBlock(t, gen.lastPrompt(t)); got != "{}" {
		t.Errorf("disclosed = %q, want {}", got)
	}
}

func TestChatUnknownPermissionIgnored(t *testing.T) {
	gen := &recordingGenerator{reply: "ok"}
	svc := NewService(newLoader(t), gen)

	_, err := svc.Chat(context.Background(), Request{
		Message:     "What is my score?",
		Permissions: []string{"credit_score", "nonexistent_key", "credit_score"},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	prompt := gen.lastPrompt(t)
	want := "{\n  \"credit_score\": 742\n}"
	if got := disclosedBlock(t, prompt); got != want {
		t.Errorf("disclosed = %q, want %q", got, want)
	}
	for _, leaked := range []string{"car_loan", "epf_balance", "stocks", "nonexistent_key"} {
		if strings.Contains(prompt, leaked) {
			t.Errorf("prompt leaks %q", leaked)
		}
	}
	if !strings.Contains(prompt, `The user's question is: "What is my score?"`) {
		t.Errorf("prompt missing question:\n%s", prompt)
	}
	if !strings.Contains(prompt, Delimiter) {
		t.Error("prompt missing delimiter instruction")
	}
}

func TestChatNestedFieldIndented(t *testing.T) {
	gen := &recordingGenerator{reply: "ok"}
	svc := NewService(newLoader(t), gen)

	if _, err := svc.Chat(context.Background(), Request{Message: "x", Permissions: []string{"liabilities"}}); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"liabilities\": {\n    \"car_loan\": 15000\n  }\n}"
	if got := disclosedBlock(t, gen.lastPrompt(t)); got != want {
		t.Errorf("disclosed = %q, want %q", got, want)
	}
}

func TestChatValidation(t *testing.T) {
	gen := &recordingGenerator{reply: "ok"}
	svc := NewService(newLoader(t), gen)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := svc.Chat(context.Background(), Request{Message: msg})
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("Chat(%q) error = %v, want ErrValidation", msg, err)
		}
	}
	if len(gen.prompts) != 0 {
		t.Error("generator called for invalid request")
	}
}

func TestChatLoadFailurePropagates(t *testing.T) {
	gen := &recordingGenerator{reply: "ok"}
	svc := NewService(memory.Failing(core.ErrRecordMalformed), gen)

	_, err := svc.Chat(context.Background(), Request{Message: "hi"})
	if !errors.Is(err, core.ErrRecordMalformed) {
		t.Errorf("Chat() error = %v, want ErrRecordMalformed", err)
	}
}

func TestChatGenerationFailureYieldsApology(t *testing.T) {
	audit := &fakeAudit{}
	gen := &recordingGenerator{err: errors.New("quota exceeded")}
	svc := NewService(newLoader(t), gen, WithAudit(audit))

	resp, err := svc.Chat(context.Background(), Request{Message: "hi", Permissions: []string{"credit_score"}})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !resp.Failed || resp.Reply != ApologyReply || resp.Suggestions != nil {
		t.Errorf("resp = %+v", resp)
	}
	if s := svc.Stats(); s.Exchanges != 1 || s.GenerationFailures != 1 {
		t.Errorf("Stats() = %+v", s)
	}
	if len(audit.msgs) != 1 || audit.msgs[0].Outcome != amqp.OutcomeGenerationError {
		t.Fatalf("audit = %+v", audit.msgs)
	}
}

func TestChatNilGeneratorYieldsApology(t *testing.T) {
	svc := NewService(newLoader(t), nil)
	resp, err := svc.Chat(context.Background(), Request{Message: "hi"})
	if err != nil || !resp.Failed {
		t.Errorf("Chat() = %+v, %v", resp, err)
	}
	if svc.Ready() {
		t.Error("Ready() = true without generator")
	}
}

func TestChatTimeout(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	svc := NewService(newLoader(t), gen, WithTimeout(10*time.Millisecond))

	resp, err := svc.Chat(context.Background(), Request{Message: "hi"})
	if err != nil || !resp.Failed {
		t.Errorf("Chat() = %+v, %v", resp, err)
	}
}

func TestChatAuditCarriesNoContent(t *testing.T) {
	audit := &fakeAudit{err: errors.New("broker down")}
	gen := &recordingGenerator{reply: "Your score is 742.\n---SUGGESTIONS---\nA?\nB?\nC?"}
	svc := NewService(newLoader(t), gen, WithAudit(audit))

	resp, err := svc.Chat(context.Background(), Request{
		Message:     "secret question",
		Permissions: []string{"credit_score", "bogus"},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v (audit failure must not fail the exchange)", err)
	}
	if len(audit.msgs) != 1 {
		t.Fatalf("published %d audit messages", len(audit.msgs))
	}
	msg := audit.msgs[0]
	if msg.Outcome != amqp.OutcomeOK || msg.SuggestionCount != 3 || msg.ReplyChars != len(resp.Reply) {
		t.Errorf("audit = %+v", msg)
	}
	if len(msg.DisclosedFields) != 1 || msg.DisclosedFields[0] != "credit_score" {
		t.Errorf("DisclosedFields = %v", msg.DisclosedFields)
	}
	body, _ := msg.ToJSON()
	for _, leaked := range []string{"secret question", "Your score"} {
		if strings.Contains(string(body), leaked) {
			t.Errorf("audit body leaks %q: %s", leaked, body)
		}
	}
}
