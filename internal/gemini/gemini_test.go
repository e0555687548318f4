package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"

	"finboard/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{
		APIKey:  "test-key",
		Model:   "gemini-test",
		Options: []option.ClientOption{option.WithEndpoint(srv.URL)},
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGenerate(t *testing.T) {
	var gotPath, gotPrompt, gotRole, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if gotKey == "" {
			gotKey = r.Header.Get("X-Goog-Api-Key")
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.Unmarshal(body, &req); err == nil && len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
			gotRole = req.Contents[0].Role
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello"},{"text":" there"}]},"finishReason":"STOP"}]}`)
	})

	text, err := c.Generate(context.Background(), "say hi")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Hello there" {
		t.Errorf("Generate() = %q", text)
	}
	if gotPath != "/v1beta/models/gemini-test:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotPrompt != "say hi" || gotRole != "user" {
		t.Errorf("sent prompt %q with role %q", gotPrompt, gotRole)
	}
	if gotKey != "test-key" {
		t.Errorf("api key = %q", gotKey)
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"boom"}}`},
		{"quota", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`},
		{"blocked prompt", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"empty text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  "}]},"finishReason":"MAX_TOKENS"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			if _, err := c.Generate(context.Background(), "x"); !errors.Is(err, core.ErrGeneration) {
				t.Errorf("Generate() error = %v, want ErrGeneration", err)
			}
		})
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), Config{APIKey: " "}, nil); err == nil {
		t.Error("New() accepted blank key")
	}
}

func TestModelResource(t *testing.T) {
	for in, want := range map[string]string{
		"gemini-1.5-flash-latest":    "models/gemini-1.5-flash-latest",
		"models/gemini-pro":          "models/gemini-pro",
		"tunedModels/my-tuned-model": "tunedModels/my-tuned-model",
	} {
		if got := modelResource(in); got != want {
			t.Errorf("modelResource(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnavailable(t *testing.T) {
	var u Unavailable
	if _, err := u.Generate(context.Background(), "x"); !errors.Is(err, core.ErrGeneration) {
		t.Errorf("Generate() error = %v", err)
	}
	if u.Configured() {
		t.Error("Configured() = true")
	}
}
