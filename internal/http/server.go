package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"feedtrend/internal/cache"
	"feedtrend/internal/chart"
	"feedtrend/internal/core"
	applog "feedtrend/internal/log"
	"feedtrend/internal/metrics"
	"feedtrend/internal/middleware/ratelimit"
	"feedtrend/internal/middleware/security"
	"feedtrend/internal/services"
	appweb "feedtrend/web"
)

// maxUploadBytes caps the multipart body of an upload.
const maxUploadBytes = 32 << 20

// Server serves the feedback UI, the JSON API and /metrics.
type Server struct {
	http.Server
	templates *template.Template
	svc       *services.FeedbackService
	logger    *applog.Logger

	monthCache  *cache.LRUCache[core.RecordSet]
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	headers     *security.HeadersMiddleware

	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics
	feedback     *metrics.FeedbackMetrics
	started      time.Time
	shutdownOnce sync.Once
}

type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *applog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMonthCache exposes the month cache on /readyz and /metrics.
func WithMonthCache(c *cache.LRUCache[core.RecordSet]) Option {
	return func(s *Server) {
		s.monthCache = c
	}
}

// WithRateLimit overrides the upload and delete rate limit.
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(s *Server) {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		s.rateLimiter = ratelimit.NewLimiter(cfg)
	}
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.FeedbackService, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		svc:      svc,
		logger:   applog.New(applog.Config{Component: applog.ComponentHTTP, Handler: slog.Default().Handler()}),
		detector: security.NewDetector(),
		headers:  security.NewHeadersMiddleware(security.DefaultHeadersConfig(chart.AssetsHost)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}
	s.registerMetrics()

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.WarnContext(context.Background(), "Failed parsing templates", "error", err)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.Handler = s.middleware(mux)
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.WarnContext(context.Background(), "Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler(s.registry))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /uploads", s.handleUpload)
	mux.HandleFunc("GET /months/{month}", s.handleMonth)
	mux.HandleFunc("GET /months/{month}/download", s.handleDownload)
	mux.HandleFunc("POST /months/{month}/delete", s.handleDelete)
	mux.HandleFunc("GET /trends", s.handleTrends)
	mux.HandleFunc("GET /compare", s.handleCompare)
	mux.HandleFunc("GET /charts/trends", s.handleTrendsChart)
	mux.HandleFunc("GET /charts/compare", s.handleCompareChart)

	mux.HandleFunc("GET /api/months", s.handleAPIMonths)
	mux.HandleFunc("GET /api/months/{month}", s.handleAPIMonth)
	mux.HandleFunc("GET /api/summary", s.handleAPISummary)
}

// middleware wraps h outermost first: logger, request id, access log,
// probe detection, security headers, the POST rate limit, then request
// metrics around the mux.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.httpMetrics.Middleware(h)
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(h)
	h = s.headers.Middleware(h)
	h = s.detector.Middleware(h)
	h = applog.AccessLog(h)
	h = applog.RequestIDMiddleware(h)
	return applog.Middleware(s.logger)(h)
}

func (s *Server) registerMetrics() {
	s.started = time.Now()
	s.registry = metrics.NewRegistry()
	s.httpMetrics = metrics.NewHTTPMetrics(s.registry)
	s.feedback = metrics.NewFeedbackMetrics(s.registry)
	metrics.RegisterGuardStats(s.registry, metrics.GuardStats{
		RateLimited:    func() int64 { return s.rateLimiter.GetMetrics().TotalHits },
		TrackedClients: func() int64 { return s.rateLimiter.GetMetrics().ClientCount },
		Suspicious:     func() int64 { return s.detector.GetMetrics().BlockedRequests },
	})
	if s.monthCache != nil {
		metrics.RegisterCacheStats(s.registry, s.monthCache)
	}
}

// onRateLimit answers a throttled upload with 429 and Retry-After.
func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many uploads. Please try again in a minute.").
		Header("Retry-After", "60").
		Write(w)
}

// Shutdown stops background goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"labels": core.Labels,
		"field": func(r core.Record, textColumn, column string) string {
			return r.Field(textColumn, column)
		},
		"labelClass": func(l core.Label) string {
			return strings.ToLower(string(l))
		},
	}
}

// render executes a page template, answering 500 when templates are
// unavailable.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
