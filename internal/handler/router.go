package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"dircd/internal/pkg/limiter"
	"dircd/internal/pkg/logx"
)

// NewRouter assembles the status API router: request IDs, logging, recovery,
// per-IP rate limiting, and the read-only endpoints. Everything here is
// GET-only; the bridge is driven by IRC and the gateway, never by HTTP.
func NewRouter(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	ipLimiter := limiter.NewIPRateLimiter(rate.Limit(5), 10)
	r.Use(ipLimiter.Middleware)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Get("/health", deps.HealthHandler)
	r.Route("/api", func(r chi.Router) {
		r.Get("/directory", deps.DirectoryHandler)
		r.Get("/sessions", deps.SessionsHandler)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
