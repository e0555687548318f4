package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady fails when templates are missing or the record cannot be
// loaded. A missing generator is reported but does not fail readiness: chat
// still answers, with the apology.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if _, err := s.loader.Load(ctx); err != nil {
		checks["record"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["record"] = "ok"
	}

	if s.chat != nil && s.chat.Ready() {
		checks["generator"] = "ok"
	} else {
		checks["generator"] = "not_configured"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	var exchanges, failures int64
	if s.chat != nil {
		stats := s.chat.Stats()
		exchanges, failures = stats.Exchanges, stats.GenerationFailures
	}
	m := s.appMetrics

	fmt.Fprintf(w, "# Application metrics\n")
	fmt.Fprintf(w, "finboard_uptime_seconds %d\n", int64(time.Since(m.uptime).Seconds()))
	fmt.Fprintf(w, "finboard_http_requests_total %d\n", traceMetrics.TotalRequests)
	fmt.Fprintf(w, "finboard_http_server_errors_total %d\n", traceMetrics.ServerErrors)
	fmt.Fprintf(w, "finboard_http_last_duration_microseconds %d\n", traceMetrics.LastDurationUs)
	fmt.Fprintf(w, "finboard_render_errors_total %d\n", m.renderErrors.Load())
	fmt.Fprintf(w, "finboard_record_load_failures_total %d\n", m.loadFailures.Load())
	fmt.Fprintf(w, "\n# Session metrics\n")
	fmt.Fprintf(w, "finboard_logins_total %d\n", m.logins.Load())
	fmt.Fprintf(w, "finboard_login_failures_total %d\n", m.failedLogins.Load())
	fmt.Fprintf(w, "\n# Chat metrics\n")
	fmt.Fprintf(w, "finboard_chat_requests_total %d\n", m.chatRequested.Load())
	fmt.Fprintf(w, "finboard_chat_unauthorized_total %d\n", m.chatRejected.Load())
	fmt.Fprintf(w, "finboard_chat_exchanges_total %d\n", exchanges)
	fmt.Fprintf(w, "finboard_chat_generation_failures_total %d\n", failures)
}
