// Package session keeps the dashboard's login flag and flash messages in a
// signed cookie. There is no server-side session store.
package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Session is the decoded cookie state for one browser.
type Session struct {
	loggedIn bool
	flashes  []string
}

// IsAuthenticated reports whether the login flag is set.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.loggedIn
}

// AddFlash queues a one-shot message for the next rendered page.
func (s *Session) AddFlash(msg string) {
	s.flashes = append(s.flashes, msg)
}

// Flashes returns queued messages and clears them. The session has to be
// saved again for the clearing to stick.
func (s *Session) Flashes() []string {
	out := s.flashes
	s.flashes = nil
	return out
}

type claims struct {
	LoggedIn bool     `json:"logged_in"`
	Flashes  []string `json:"flashes,omitempty"`
	jwt.RegisteredClaims
}

// Options configures a Manager.
type Options struct {
	Secret       string
	CookieName   string
	MaxAge       time.Duration
	Secure       bool
	Username     string
	Password     string
	PasswordHash string
}

// Manager signs, verifies and authenticates sessions.
type Manager struct {
	secret       []byte
	cookieName   string
	maxAge       time.Duration
	secure       bool
	username     []byte
	password     []byte
	passwordHash []byte
	now          func() time.Time
}

// NewManager builds a Manager. An empty secret or cookie name is rejected.
func NewManager(opts Options) (*Manager, error) {
	if opts.Secret == "" {
		return nil, errors.New("session secret cannot be empty")
	}
	if opts.CookieName == "" {
		return nil, errors.New("session cookie name cannot be empty")
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 12 * time.Hour
	}
	m := &Manager{
		secret:     []byte(opts.Secret),
		cookieName: opts.CookieName,
		maxAge:     opts.MaxAge,
		secure:     opts.Secure,
		username:   []byte(opts.Username),
		password:   []byte(opts.Password),
		now:        time.Now,
	}
	if opts.PasswordHash != "" {
		m.passwordHash = []byte(opts.PasswordHash)
	}
	return m, nil
}

// Load decodes the session cookie. A missing, tampered, expired or
// foreign-key cookie yields an empty session, never an error.
func (m *Manager) Load(r *http.Request) *Session {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return &Session{}
	}
	var cl claims
	_, err = jwt.ParseWithClaims(c.Value, &cl, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return &Session{}
	}
	return &Session{loggedIn: cl.LoggedIn, flashes: cl.Flashes}
}

// Save writes s back as a signed cookie.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	now := m.now()
	cl := claims{
		LoggedIn: s.loggedIn,
		Flashes:  s.flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Login sets the flag when username and password match the configured pair
// exactly. A failed attempt leaves the session as it was.
func (m *Manager) Login(s *Session, username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), m.username) == 1

	var passOK bool
	if m.passwordHash != nil {
		passOK = bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), m.password) == 1
	}

	if !userOK || !passOK {
		return false
	}
	s.loggedIn = true
	return true
}

// Logout clears the flag.
func (m *Manager) Logout(s *Session) {
	s.loggedIn = false
}

// RequireLogin redirects to /login unless the request carries an
// authenticated session.
func (m *Manager) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Load(r).IsAuthenticated() {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
