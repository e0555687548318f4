// Package chat answers questions about the financial record through a text
// generation model, disclosing only the fields the caller permits.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/middleware/trace"
	"finboard/internal/store"
)

// Generator turns a prompt into text. It is called once per exchange.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// AuditPublisher receives a metadata-only event per exchange.
type AuditPublisher interface {
	PublishChatAudit(ctx context.Context, msg *amqp.ChatAuditMessage) error
}

// Request is the decoded /chat body.
type Request struct {
	Message     string   `json:"message"`
	Permissions []string `json:"permissions"`
}

// Stats are cumulative counters since start.
type Stats struct {
	Exchanges          int64
	GenerationFailures int64
}

type Service struct {
	loader    store.RecordLoader
	generator Generator
	audit     AuditPublisher
	timeout   time.Duration
	logger    *applog.Logger

	exchanges atomic.Int64
	failures  atomic.Int64
}

// Option configures a Service.
type Option func(*Service)

// WithAudit publishes an audit event after every exchange.
func WithAudit(p AuditPublisher) Option {
	return func(s *Service) { s.audit = p }
}

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *applog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(loader store.RecordLoader, generator Generator, opts ...Option) *Service {
	s := &Service{
		loader:    loader,
		generator: generator,
		timeout:   30 * time.Second,
		logger:    applog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentChat)
	return s
}

// Chat runs one exchange. A blank message is ErrValidation and a record
// that cannot be loaded is returned as is. Generation failures never
// surface as errors: they yield the apology response.
func (s *Service) Chat(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Response{}, fmt.Errorf("%w: message is required", core.ErrValidation)
	}

	rec, err := s.loader.Load(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("load record: %w", err)
	}

	start := time.Now()
	s.exchanges.Add(1)

	disclosed := rec.Disclose(req.Permissions)
	prompt, err := BuildPrompt(disclosed, req.Message)
	if err != nil {
		return Response{}, err
	}

	resp, genErr := s.generate(ctx, prompt)
	fields := disclosedNames(disclosed)

	if genErr != nil {
		s.failures.Add(1)
		s.logger.ErrorContext(ctx, "Text generation failed", applog.NewFields().
			WithOperation(applog.OpGenerate).
			WithErrorType(applog.ErrorTypeExternal).
			WithError(genErr).
			WithRequestID(trace.GetRequestID(ctx)).
			ToSlice()...)
		resp = Apology()
	} else {
		s.logger.InfoContext(ctx, "Chat exchange completed", applog.NewFields().
			WithOperation(applog.OpGenerate).
			WithRequestID(trace.GetRequestID(ctx)).
			WithChat(req.Permissions, fields, len(resp.Suggestions), len(resp.Reply)).
			ToSlice()...)
	}

	s.publishAudit(ctx, req.Permissions, fields, resp, time.Since(start))
	return resp, nil
}

func (s *Service) generate(ctx context.Context, prompt string) (Response, error) {
	if s.generator == nil {
		return Response{}, fmt.Errorf("%w: no generator configured", core.ErrGeneration)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		if !errors.Is(err, core.ErrGeneration) {
			err = fmt.Errorf("%w: %w", core.ErrGeneration, err)
		}
		return Response{}, err
	}
	return ParseReply(raw), nil
}

func (s *Service) publishAudit(ctx context.Context, permissions, disclosed []string, resp Response, elapsed time.Duration) {
	if s.audit == nil {
		return
	}
	outcome := amqp.OutcomeOK
	if resp.Failed {
		outcome = amqp.OutcomeGenerationError
	}
	msg := amqp.NewChatAuditMessage(outcome, permissions, disclosed)
	msg.RequestID = trace.GetRequestID(ctx)
	msg.SuggestionCount = len(resp.Suggestions)
	msg.ReplyChars = len(resp.Reply)
	msg.DurationMs = elapsed.Milliseconds()

	if err := s.audit.PublishChatAudit(context.WithoutCancel(ctx), msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish chat audit",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldError, err)
	}
}

// Stats returns the counters.
func (s *Service) Stats() Stats {
	return Stats{
		Exchanges:          s.exchanges.Load(),
		GenerationFailures: s.failures.Load(),
	}
}

// Ready reports whether a generator is wired.
func (s *Service) Ready() bool {
	if s.generator == nil {
		return false
	}
	if r, ok := s.generator.(interface{ Configured() bool }); ok {
		return r.Configured()
	}
	return true
}

func disclosedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
