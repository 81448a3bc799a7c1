// Package web provides the HTTP server and handlers for the portfolio site.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/portfolio/internal/config"
	"github.com/JonMunkholm/portfolio/internal/core"
	"github.com/JonMunkholm/portfolio/internal/logging"
	"github.com/JonMunkholm/portfolio/internal/mail"
	"github.com/JonMunkholm/portfolio/internal/portfolio"
	"github.com/JonMunkholm/portfolio/internal/web/middleware"
	"github.com/JonMunkholm/portfolio/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the portfolio site.
type Server struct {
	service  *core.Service
	mailer   mail.Mailer
	cfg      *config.Config
	flashes  *flashStore
	limiters []*middleware.RateLimiter
	router   *chi.Mux
	server   *http.Server
	now      func() time.Time
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, mailer mail.Mailer, cfg *config.Config) (*Server, error) {
	if service == nil {
		return nil, errors.New("cleaning service is required")
	}
	if mailer == nil {
		mailer = mail.New(mail.Config{})
	}

	flashes, err := newFlashStore(cfg.Site.SecretKey, cfg.Site.SecureCookies)
	if err != nil {
		return nil, err
	}

	s := &Server{
		service: service,
		mailer:  mailer,
		cfg:     cfg,
		flashes: flashes,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.setupMiddleware()
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(s.recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter(s.cfg.Rate.RequestsPerMinute))
	}
}

// newLimiter returns per-IP rate limiting middleware that renders the
// site's 429 page.
func (s *Server) newLimiter(perMinute int) func(http.Handler) http.Handler {
	rl := middleware.NewRateLimiter(perMinute)
	rl.OnLimit = http.HandlerFunc(s.handleRateLimited)
	s.limiters = append(s.limiters, rl)
	return rl.Handler
}

// formLimit limits a form submission route when rate limiting is enabled.
func (s *Server) formLimit(perMinute int) func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.newLimiter(perMinute)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("static files: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Pages
	s.router.Get("/", s.page("", "home", templates.Home))
	s.router.Get("/about", s.page("About", "about", templates.About))
	s.router.Get("/portfolio", s.handlePortfolio)
	s.router.Get("/resume", s.page("Resume", "resume", templates.Resume))

	// Projects
	s.router.Get(portfolio.DataCleaningPath, s.page("Automated Data Cleaning", "portfolio", templates.DataCleaning))
	s.router.Get(portfolio.SalesAnalysisPath, s.page("Sales Data Analysis", "portfolio", templates.SalesAnalysis))
	s.router.Get(portfolio.ResearchPath, s.page("Remote Work Trends Research", "portfolio", templates.Research))

	// Cleaning demo
	s.router.Get(portfolio.DataCleaningDemo, s.handleDemo)
	s.router.With(s.formLimit(s.cfg.Rate.UploadLimit)).Post(portfolio.DataCleaningDemo, s.handleDemoUpload)
	s.router.Get("/downloads/{filename}", s.handleDownload)

	// Contact
	s.router.Get("/contact", s.page("Contact", "contact", templates.Contact))
	s.router.With(s.formLimit(s.cfg.Rate.ContactLimit)).Post("/contact", s.handleContact)

	s.router.Get("/healthz", s.handleHealth)

	s.router.NotFound(s.handleNotFound)
	s.router.MethodNotAllowed(s.handleMethodNotAllowed)
	return nil
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// RunLimiterCleanup evicts idle rate limit entries until ctx is done.
func (s *Server) RunLimiterCleanup(ctx context.Context) {
	for _, rl := range s.limiters {
		go rl.Run(ctx)
	}
	<-ctx.Done()
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// basePage returns page data without consuming flash messages.
func (s *Server) basePage(title string) templates.Page {
	return templates.Page{
		Title: title,
		Owner: s.cfg.Site.OwnerName,
		Year:  s.now().Year(),
	}
}

// newPage returns page data with the pending flash messages, which are
// cleared from the client.
func (s *Server) newPage(w http.ResponseWriter, r *http.Request, title, active string) templates.Page {
	p := s.basePage(title)
	p.Active = active
	p.Flashes = s.flashes.Pop(w, r)
	return p
}

// page returns a handler for a page without request-specific content.
func (s *Server) page(title, active string, c func(templates.Page) templ.Component) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, c(s.newPage(w, r, title, active)))
	}
}

// render writes c as an HTML response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

// redirect sends the client to path after a form submission.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if enableCSP {
				w.Header().Set("Content-Security-Policy",
					"default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:; font-src 'self'; form-action 'self'; frame-ancestors 'none'")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
