// Package gemini implements the chat generator on the Generative Language
// API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	generativelanguage "cloud.google.com/go/ai/generativelanguage/apiv1beta"
	"cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"finboard/internal/core"
	applog "finboard/internal/log"
)

const DefaultModel = "gemini-1.5-flash-latest"

// Config holds client settings. Options are passed through to the API
// client and exist for tests.
type Config struct {
	APIKey  string
	Model   string
	Options []option.ClientOption
}

type Client struct {
	gen    *generativelanguage.GenerativeClient
	model  string
	logger *applog.Logger
}

// New creates a REST client authenticated with cfg.APIKey.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = applog.Discard()
	}

	opts := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, cfg.Options...)
	gen, err := generativelanguage.NewGenerativeRESTClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create generative client: %w", err)
	}

	return &Client{
		gen:    gen,
		model:  modelResource(cfg.Model),
		logger: logger.WithComponent(applog.ComponentGemini),
	}, nil
}

func (c *Client) Close() error {
	return c.gen.Close()
}

func modelResource(model string) string {
	if strings.HasPrefix(model, "models/") || strings.HasPrefix(model, "tunedModels/") {
		return model
	}
	return "models/" + model
}

// Generate sends prompt as a single user turn and returns the text of the
// first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	req := &generativelanguagepb.GenerateContentRequest{
		Model: c.model,
		Contents: []*generativelanguagepb.Content{{
			Role: "user",
			Parts: []*generativelanguagepb.Part{{
				Data: &generativelanguagepb.Part_Text{Text: prompt},
			}},
		}},
	}

	resp, err := c.gen.GenerateContent(ctx, req)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			c.logger.WarnContext(ctx, "Generation request rejected",
				applog.FieldModel, c.model,
				applog.FieldStatusCode, apiErr.Code,
				applog.FieldErrorType, applog.ErrorTypeExternal)
		}
		return "", fmt.Errorf("%w: generate content: %w", core.ErrGeneration, err)
	}

	text, err := candidateText(resp)
	if err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "Generated content",
		applog.FieldModel, c.model,
		applog.FieldPromptChars, len(prompt),
		applog.FieldReplyChars, len(text),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return text, nil
}

// Configured reports that a real model is behind this generator.
func (c *Client) Configured() bool { return true }

func candidateText(resp *generativelanguagepb.GenerateContentResponse) (string, error) {
	if reason := resp.GetPromptFeedback().GetBlockReason(); reason != generativelanguagepb.GenerateContentResponse_PromptFeedback_BLOCK_REASON_UNSPECIFIED {
		return "", fmt.Errorf("%w: prompt blocked: %s", core.ErrGeneration, reason)
	}
	candidates := resp.GetCandidates()
	if len(candidates) == 0 || candidates[0].GetContent() == nil {
		return "", fmt.Errorf("%w: no candidates returned", core.ErrGeneration)
	}

	var b strings.Builder
	for _, part := range candidates[0].GetContent().GetParts() {
		b.WriteString(part.GetText())
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: empty response (finish reason %s)", core.ErrGeneration, candidates[0].GetFinishReason())
	}
	return b.String(), nil
}

// Unavailable is the generator used when no API key is configured. Every
// call fails, so chat answers with the apology.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: GEMINI_API_KEY is not set", core.ErrGeneration)
}

func (Unavailable) Configured() bool { return false }
