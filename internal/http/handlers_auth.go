package http

import (
	"net/http"

	applog "finboard/internal/log"
)

const (
	flashLoggedIn     = "You were successfully logged in!"
	flashInvalidLogin = "Invalid credentials. Please try again."
	flashLoggedOut    = "You were logged out."
)

type loginPage struct {
	layout
	Username string
}

// handleLogin renders the form on GET and checks credentials on POST. A
// mismatch re-renders the form with a flash rather than redirecting.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(r)

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		data := &loginPage{layout: layout{Title: "Login", Active: "login"}}
		s.render(w, r, sess, http.StatusOK, "login.html", data, &data.layout)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			s.logger.WarnContext(r.Context(), "Parse form error", applog.FieldError, err)
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		username := r.PostForm.Get("username")
		if s.sessions.Login(sess, username, r.PostForm.Get("password")) {
			s.appMetrics.logins.Add(1)
			s.logger.InfoContext(r.Context(), "Login succeeded", applog.FieldOperation, applog.OpLogin)
			sess.AddFlash(flashLoggedIn)
			if err := s.sessions.Save(w, sess); err != nil {
				s.logger.ErrorContext(r.Context(), "Failed to save session", applog.FieldError, err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		s.appMetrics.failedLogins.Add(1)
		s.logger.WarnContext(r.Context(), "Login failed", applog.FieldOperation, applog.OpLogin)
		sess.AddFlash(flashInvalidLogin)
		data := &loginPage{layout: layout{Title: "Login", Active: "login"}, Username: username}
		s.render(w, r, sess, http.StatusOK, "login.html", data, &data.layout)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}
	sess := s.sessions.Load(r)
	s.sessions.Logout(sess)
	sess.AddFlash(flashLoggedOut)
	if err := s.sessions.Save(w, sess); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save session", applog.FieldError, err)
	}
	s.logger.InfoContext(r.Context(), "Logged out", applog.FieldOperation, applog.OpLogout)
	http.Redirect(w, r, "/login", http.StatusFound)
}
