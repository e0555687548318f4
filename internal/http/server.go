package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync/atomic"
	"time"

	"finboard/internal/chat"
	applog "finboard/internal/log"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/session"
	"finboard/internal/store"
	appweb "finboard/web"
)

// Dependencies are the collaborators the handlers need.
type Dependencies struct {
	Loader   store.RecordLoader
	Chat     *chat.Service
	Sessions *session.Manager
	Logger   *applog.Logger

	CurrencySymbol   string
	ChatRequireLogin bool
}

type Server struct {
	http.Server
	templates *template.Template
	loader    store.RecordLoader
	chat      *chat.Service
	sessions  *session.Manager
	logger    *applog.Logger

	currencySymbol   string
	chatRequireLogin bool

	traceMiddleware *trace.Middleware
	appMetrics      *appMetrics
}

type appMetrics struct {
	uptime        time.Time
	logins        atomic.Int64
	failedLogins  atomic.Int64
	renderErrors  atomic.Int64
	loadFailures  atomic.Int64
	chatRejected  atomic.Int64
	chatRequested atomic.Int64
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		loader:           deps.Loader,
		chat:             deps.Chat,
		sessions:         deps.Sessions,
		logger:           logger,
		currencySymbol:   deps.CurrencySymbol,
		chatRequireLogin: deps.ChatRequireLogin,
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	t, err := parseTemplates(appweb.TemplatesFS, s.currencySymbol)
	if err != nil {
		logger.Error("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	gate := s.sessions.RequireLogin
	mux.Handle("/", gate(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("/transactions", gate(http.HandlerFunc(s.handleTransactions)))
	mux.Handle("/portfolio", gate(http.HandlerFunc(s.handlePortfolio)))
	mux.Handle("/epf_credit", gate(http.HandlerFunc(s.handleEPFCredit)))
	mux.Handle("/assets_liabilities", gate(http.HandlerFunc(s.handleAssetsLiabilities)))

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/chat", s.handleChat)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	resolver := security.NewClientIPResolver()
	s.traceMiddleware = trace.NewMiddleware(logger, resolver.ClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = applog.Middleware(logger, trace.GetRequestID)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Handler = handler

	return s
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
	return s.Server.Shutdown(ctx)
}
