package http

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/session"
)

var titleCaser = cases.Title(language.English)

// label turns a document key such as "car_loan" into "Car Loan".
func label(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

func parseTemplates(fsys fs.FS, currency string) (*template.Template, error) {
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string { return core.FormatAmount(d, currency) },
		"label": label,
	}
	return template.New("").Funcs(funcs).ParseFS(fsys, "templates/*.html")
}

// layout is embedded by every page's data.
type layout struct {
	Title    string
	Active   string
	LoggedIn bool
	Flashes  []string
}

type amountRow struct {
	Name   string
	Amount decimal.Decimal
}

func amountRows(m core.Amounts) []amountRow {
	rows := make([]amountRow, 0, len(m))
	for _, name := range m.Names() {
		rows = append(rows, amountRow{Name: name, Amount: m[name]})
	}
	return rows
}

// render pops the session's flashes into the page, saves the session so the
// flashes are gone on the next request, and writes the template. The body is
// buffered so a template failure becomes a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, sess *session.Session, status int, name string, data any, base *layout) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldTemplate, name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	base.LoggedIn = sess.IsAuthenticated()
	base.Flashes = sess.Flashes()

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.appMetrics.renderErrors.Add(1)
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			applog.FieldTemplate, name,
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := s.sessions.Save(w, sess); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save session", applog.FieldError, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// recordUnavailable answers a page request whose record could not be loaded.
func (s *Server) recordUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	s.appMetrics.loadFailures.Add(1)
	s.logger.ErrorContext(r.Context(), "Failed to load financial record", applog.NewFields().
		WithOperation(applog.OpLoad).
		WithErrorType(errorType(err)).
		WithError(err).
		ToSlice()...)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, core.ErrRecordMalformed):
		return applog.ErrorTypeParse
	case errors.Is(err, core.ErrRecordUnavailable):
		return applog.ErrorTypeIO
	case errors.Is(err, core.ErrValidation):
		return applog.ErrorTypeValidation
	default:
		return applog.ErrorTypeInternal
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
