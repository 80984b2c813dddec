// Package web provides the dashboard's HTTP server and handlers.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/config"
	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/logging"
	"github.com/JonMunkholm/coverdesk/internal/metrics"
	mw "github.com/JonMunkholm/coverdesk/internal/web/middleware"
	"github.com/JonMunkholm/coverdesk/internal/web/templates"
)

// sessionSweepInterval is how often expired sessions are removed.
const sessionSweepInterval = 5 * time.Minute

// Server is the dashboard HTTP server.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	store    *SessionStore
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	router   *chi.Mux
	server   *http.Server

	limiter       *ipLimiter
	importLimiter *ipLimiter

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// Option customises a Server.
type Option func(*Server)

// WithClientFactory replaces how per-session API clients are built.
func WithClientFactory(f ClientFactory) Option {
	return func(s *Server) {
		s.store.newClient = f
	}
}

// NewServer creates the server. gatherer backs /metrics and may be nil;
// m may be nil.
func NewServer(service *core.Service, cfg *config.Config, gatherer prometheus.Gatherer, m *metrics.Metrics, opts ...Option) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		metrics:  m,
		gatherer: gatherer,
		router:   chi.NewRouter(),
	}
	s.store = NewSessionStore(cfg.Security.SessionTTL, s.newClient, m)
	if cfg.Rate.Enabled {
		s.limiter = newIPLimiter(cfg.Rate.RequestsPerMinute)
		s.importLimiter = newIPLimiter(cfg.Rate.ImportLimit)
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// newClient builds a session's API client from the configuration.
func (s *Server) newClient(sess apiclient.Session, nav apiclient.Navigator) (*apiclient.Client, error) {
	return apiclient.New(core.ClientConfig(s.cfg),
		apiclient.WithSession(sess),
		apiclient.WithNavigator(nav),
		apiclient.WithMetrics(s.metrics),
	)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger(s.metrics))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		r.Use(s.sessions)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
			r.Get("/login", s.handleLoginPage)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireLogin(apiclient.DefaultLoginRoute, signedIn))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
				r.Get("/", s.handleDashboard)
				r.Get("/entities/{key}", s.handleEntityPage)
				r.Get("/api/entities", s.handleListEntities)
				r.Get("/api/entities/{key}", s.handleEntityView)
			})

			r.Route("/api/import/{key}", func(r chi.Router) {
				if s.importLimiter != nil {
					r.Use(s.importLimiter.middleware)
				}
				// Uploads wait for a slot and then run against the backend.
				r.Use(middleware.Timeout(s.cfg.Import.MaxWaitTime + s.cfg.Import.Timeout))
				r.Get("/", s.handleImportPreview)
				r.Post("/file", s.handleImportFile)
				r.Post("/upload", s.handleImportUpload)
				r.Post("/reset", s.handleImportReset)
				r.Get("/sample", s.handleImportSample)
				r.Get("/history", s.handleImportHistory)
			})
		})
	})
}

// Start runs the background sweepers and serves until Shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.store.RunSweeper(ctx, sessionSweepInterval)
	}()
	for _, l := range []*ipLimiter{s.limiter, s.importLimiter} {
		if l == nil {
			continue
		}
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			l.run(ctx)
		}()
	}

	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the background work and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.bgCancel != nil {
		s.bgCancel()
		s.bgWG.Wait()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.store
}

// securityHeaders adds browser hardening headers. The CSP allows the htmx
// script origin and inline styles.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// render writes c as a full page, or as a bare fragment for htmx.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, title string, c templ.Component) {
	if !isHTMX(r) {
		user := ""
		if sess := sessionFrom(r.Context()); sess != nil {
			user = sess.User()
		}
		c = templates.Layout(title, user, c)
	}
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}

// renderComponent writes c after headers are sent; failures are only logged.
func renderComponent(ctx context.Context, w http.ResponseWriter, c templ.Component) {
	if err := c.Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render failed", "error", err)
	}
}
