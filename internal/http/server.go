package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"pokerledger/internal/amqp"
	"pokerledger/internal/cache"
	applog "pokerledger/internal/log"
	"pokerledger/internal/middleware/ratelimit"
	"pokerledger/internal/middleware/security"
	"pokerledger/internal/middleware/trace"
	"pokerledger/internal/store"
	appweb "pokerledger/web"
)

// session is the active login. The tracker serves one user at a time; logging
// in replaces the previous session wholesale.
type session struct {
	username string
	store    *store.Store
}

type Server struct {
	http.Server
	templates *template.Template
	backend   store.Backend
	publisher *amqp.Publisher

	detector *security.Detector
	headers  *security.HeadersMiddleware
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	logs     *applog.StructuredLogger

	mu      sync.Mutex
	session *session

	// saving guards mutations: a second save arriving while one is being
	// persisted is rejected instead of queued.
	saving atomic.Bool

	partialCache *cache.LRUCache[string]
	chartGroup   singleflight.Group
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Options tunes the server beyond its address.
type Options struct {
	CacheTTL     time.Duration
	CacheMaxSize int
	Publisher    *amqp.Publisher
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, backend store.Backend, opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.CacheMaxSize <= 0 {
		opts.CacheMaxSize = 256
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		backend:      backend,
		publisher:    opts.Publisher,
		detector:     security.NewDetector(),
		headers:      security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:       nil,
		partialCache: cache.NewLRUCache[string](opts.CacheMaxSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.logs = applog.NewStructuredLogger(
		applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP))
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, s.logs)
	s.cacheManager.Register(s.partialCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("POST /tournaments", s.handleSaveRecord)
	mux.HandleFunc("POST /tournaments/delete", s.handleDeleteRecord)

	mux.HandleFunc("GET /ui/summary", s.handleSummary)
	mux.HandleFunc("GET /ui/history", s.handleHistory)
	mux.HandleFunc("GET /ui/charts", s.handleCharts)
	mux.HandleFunc("GET /ui/form", s.handleForm)
	mux.HandleFunc("GET /ui/template", s.handleTemplate)

	mux.HandleFunc("GET /export", s.handleExport)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	s.Handler = s.headers.Middleware(s.tracer.Middleware(s.withRateLimit(mux)))

	return s
}

// withRateLimit applies the per-client limiter to mutating requests only;
// partial refreshes fire too often to count against the budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// currentSession returns the active session, or nil when logged out.
func (s *Server) currentSession() *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Server) setSession(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
}

// invalidateUser drops every memoized partial for the user.
func (s *Server) invalidateUser(username string) {
	s.partialCache.DeletePrefix(username + ":")
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.backend == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no backend"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
