package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/simple-gateway/pkg/gateway"
	"github.com/tendant/simple-gateway/pkg/gateway/validation"
)

// Config wires the services and cross-cutting concerns into a router.
type Config struct {
	News   *gateway.NewsService
	Images *gateway.ImageService
	Auth   *gateway.AuthService

	Logger *slog.Logger
	// Clock stamps envelope timestamps. Defaults to time.Now.
	Clock func() time.Time
	// Metrics is optional. When set, requests are recorded and /metrics is served.
	Metrics *PrometheusCollector

	// MaxUploadBytes is the image size ceiling used to cap upload bodies.
	MaxUploadBytes int64
	// RequestTimeout bounds each request's context. Zero disables it.
	RequestTimeout time.Duration
	Version        string
}

// NewRouter builds the HTTP surface. Middlewares run in a fixed order:
// request id, real ip, CORS, logging, metrics, recovery, timeout.
func NewRouter(cfg Config) http.Handler {
	rs := NewResponder(cfg.Logger, cfg.Clock)
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = validation.MaxImageSize
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	chain := NewMiddlewareChain(
		RequestIDMiddleware,
		middleware.RealIP,
		CORSMiddleware(nil, nil),
		LoggingMiddleware(rs.logger),
	)
	if cfg.Metrics != nil {
		chain.Then(MetricsMiddleware(cfg.Metrics))
	}
	chain.Then(RecoveryMiddleware(rs))
	if cfg.RequestTimeout > 0 {
		chain.Then(middleware.Timeout(cfg.RequestTimeout))
	}

	r := chi.NewRouter()
	chain.Apply(r)

	// Unknown paths and unsupported methods share one reply.
	notFound := func(w http.ResponseWriter, r *http.Request) {
		rs.Fail(w, r, http.StatusNotFound, "Resource not found")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		rs.Respond(w, r, http.StatusOK, "", map[string]string{"status": "healthy"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/", apiInfo(rs, cfg.Version))

		if cfg.Auth != nil {
			auth := NewAuthHandler(cfg.Auth, rs)
			r.With(ValidateBody(rs, LoginRules)).Post("/login", auth.Login)
		}
		if cfg.News != nil {
			r.Mount("/news", NewNewsHandler(cfg.News, rs).Routes())
		}
		if cfg.Images != nil {
			r.Mount("/images", NewImageHandler(cfg.Images, rs, cfg.MaxUploadBytes).Routes())
		}
	})

	return r
}

func apiInfo(rs *Responder, version string) http.HandlerFunc {
	info := map[string]any{
		"name":        "simple-gateway",
		"version":     version,
		"description": "CRUD gateway over a relational news store and an image blob store",
		"endpoints": map[string]string{
			"login":  "POST /api/login",
			"news":   "GET|POST /api/news, GET|PUT|DELETE /api/news/{id}",
			"images": "GET|POST /api/images, GET|PUT|DELETE /api/images/{key}",
			"health": "GET /health",
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rs.Respond(w, r, http.StatusOK, "", info)
	}
}
