package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentChat, Output: &buf})

	l.Info("hello", FieldOperation, OpGenerate)
	l.WithComponent(ComponentGemini).Debug("inner")

	out := buf.String()
	if !strings.Contains(out, "component=chat") || !strings.Contains(out, "operation=generate") {
		t.Fatalf("missing fields in %q", out)
	}
	if !strings.Contains(out, "component=gemini") {
		t.Fatalf("WithComponent not applied: %q", out)
	}
	if strings.Count(out, "component=") != 2 {
		t.Fatalf("component repeated: %q", out)
	}
}

func TestMiddlewareCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})

	h := Middleware(base, func(context.Context) string { return "req-42" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Fatalf("request id missing: %q", buf.String())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger: %+v", l)
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentChat).
		WithOperation(OpGenerate).
		WithRequestID("").
		WithError(nil).
		WithChat([]string{"credit_score"}, []string{"credit_score"}, 3, 20)

	if _, ok := f[FieldRequestID]; ok {
		t.Error("empty request id should be skipped")
	}
	if _, ok := f[FieldError]; ok {
		t.Error("nil error should be skipped")
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Errorf("ToSlice length = %d, want %d", len(f.ToSlice()), 2*len(f))
	}
}
