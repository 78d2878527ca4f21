// Package web provides the HTTP API and HTML fragments for cell clipboard transfers.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/gridclip/internal/clipboard"
	"github.com/JonMunkholm/gridclip/internal/config"
	"github.com/JonMunkholm/gridclip/internal/core"
	"github.com/JonMunkholm/gridclip/internal/metrics"
	"github.com/JonMunkholm/gridclip/internal/transfer"
	mw "github.com/JonMunkholm/gridclip/internal/web/middleware"
)

// Options are the optional collaborators of a Server.
type Options struct {
	// Sessions backs the session clipboard. Required for CLIPBOARD_BACKEND=session.
	Sessions *clipboard.SessionStore

	// System is the host clipboard used for CLIPBOARD_BACKEND=system.
	System transfer.Clipboard

	// Metrics records request metrics. Nil disables them.
	Metrics *metrics.Collector

	// Gatherer is served on the metrics path (default: prometheus.DefaultGatherer).
	Gatherer prometheus.Gatherer
}

// Server is the HTTP server for clipboard transfers.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	sessions *clipboard.SessionStore
	system   transfer.Clipboard
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer

	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
}

// NewServer creates a Server for service using cfg.
func NewServer(service *core.Service, cfg *config.Config, opts Options) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		sessions: opts.Sessions,
		system:   opts.System,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		router:   chi.NewRouter(),
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(mw.Metrics(s.metrics))
	}
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.Requests, s.cfg.Rate.Window)
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// HTML fragments
	s.router.Group(func(r chi.Router) {
		s.useSession(r)
		r.Get("/table/{tableKey}/menu", s.handleCellMenu)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))
		s.useSession(r)

		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{tableKey}", s.handleGetTable)
		r.Get("/tables/{tableKey}/cell", s.handleGetCell)
		r.Get("/tables/{tableKey}/history", s.handleHistory)

		r.Post("/tables/{tableKey}/copy", s.handleTransfer(transfer.OpCopy))
		r.Post("/tables/{tableKey}/cut", s.handleTransfer(transfer.OpCut))
		r.Post("/tables/{tableKey}/paste", s.handleTransfer(transfer.OpPaste))

		r.Get("/status", s.handleStatus)
	})
}

// useSession attaches the clipboard session cookie when the session
// backend is active.
func (s *Server) useSession(r chi.Router) {
	if s.cfg.Clipboard.Backend != config.ClipboardSession || s.sessions == nil {
		return
	}
	r.Use(mw.ClipboardSession(s.sessions, mw.SessionCookie{
		Name:   s.cfg.Clipboard.CookieName,
		Secure: s.cfg.Security.SecureCookies,
		MaxAge: s.cfg.Clipboard.SessionTTL,
	}))
}

// Start begins listening for HTTP requests.
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
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Clipboard contents must never be cached by intermediaries.
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter is a fixed-window request limiter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	done     chan struct{}
	once     sync.Once
	now      func() time.Time
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window until stop is called.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if rl.now().Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// middleware rejects clients that used up their window. TrustedRealIP has
// already replaced RemoteAddr when the request came through a proxy.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconvSeconds(rl.window))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError writes a JSON error response for failures that never reach a
// handler, such as rate limiting.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
