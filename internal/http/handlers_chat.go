package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/chat"
	"finboard/internal/core"
	applog "finboard/internal/log"
)

const maxChatBody = 64 << 10

// handleChat answers a chat request. Bad input is 400, an unloadable record
// is 500 with the apology body, and generation failures are 200 with the
// apology body.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if s.chatRequireLogin && !s.sessions.Load(r).IsAuthenticated() {
		s.appMetrics.chatRejected.Add(1)
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	s.appMetrics.chatRequested.Add(1)

	var req chat.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody))
	if err := dec.Decode(&req); err != nil {
		s.logger.WarnContext(r.Context(), "Invalid chat request body",
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldError, err)
		writeJSONError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	resp, err := s.chat.Chat(r.Context(), req)
	switch {
	case errors.Is(err, core.ErrValidation):
		writeJSONError(w, http.StatusBadRequest, "message is required")
	case err != nil:
		s.recordLoadFailedForChat(r, err)
		writeJSON(w, http.StatusInternalServerError, chat.Apology())
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) recordLoadFailedForChat(r *http.Request, err error) {
	s.appMetrics.loadFailures.Add(1)
	s.logger.ErrorContext(r.Context(), "Chat failed to load financial record", applog.NewFields().
		WithOperation(applog.OpLoad).
		WithErrorType(errorType(err)).
		WithError(err).
		ToSlice()...)
}
