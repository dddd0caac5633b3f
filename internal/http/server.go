package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/store"
	appweb "fintrack/web"
)

// Options tunes the middleware in front of the routes.
type Options struct {
	RateLimitRPM int
	CORSOrigin   string
	Logger       *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	store     store.Store
	logger    *applog.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime  time.Time
	created int64
	updated int64
	deleted int64
}

// NewServer wires routes and middleware over st, returning a ready-to-run
// http.Server.
func NewServer(addr string, st store.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		store:            st,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		securityDetector: security.NewDetector(),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	s.routes(mux)
	s.Handler = s.middleware(mux, opts)
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /calendar", s.handleCalendar)

	for _, kind := range []core.Kind{core.KindExpense, core.KindIncome} {
		base := "/" + kind.Collection()
		mux.HandleFunc("GET "+base, s.handleListTransactions(kind))
		mux.HandleFunc("POST "+base, s.handleCreateTransaction(kind))
		mux.HandleFunc("PUT "+base+"/{id}", s.handleUpdateTransaction(kind))
		mux.HandleFunc("DELETE "+base+"/{id}", s.handleDeleteTransaction(kind))
	}

	mux.HandleFunc("GET /budget", s.handleListBudgets)
	mux.HandleFunc("POST /budget", s.handleCreateBudget)
	mux.HandleFunc("PUT /budget/{id}", methodNotAllowed(http.MethodDelete))
	mux.HandleFunc("DELETE /budget/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /savings", s.handleListSavings)
	mux.HandleFunc("POST /savings", s.handleCreateSavings)
	mux.HandleFunc("PUT /savings/{id}", methodNotAllowed(http.MethodDelete))
	mux.HandleFunc("DELETE /savings/{id}", s.handleDeleteSavings)
}

// middleware wraps next, outermost first: tracing, security headers, CORS,
// suspicious request logging, write rate limiting.
func (s *Server) middleware(next http.Handler, opts Options) http.Handler {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited)(next)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.securityDetector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				applog.FieldComponent, applog.ComponentSecurity,
				applog.FieldPath, r.URL.Path,
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		if isWrite(r.Method) {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
	cors := security.CORS(opts.CORSOrigin)(h)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(cors)
	return s.traceMiddleware.Middleware(headers)
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

// Shutdown stops background routines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
