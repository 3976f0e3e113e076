package main

import (
	"context"
	"net/http"
	"time"

	"bookcomments/internal/book"
	"bookcomments/internal/config"
	"bookcomments/internal/httpx"
	"bookcomments/internal/platform/metrics"

	"go.uber.org/zap"
)

// routePrefixes are the mount points for the book routes; "/api" keeps
// clients of the original layout working.
var routePrefixes = []string{"", "/api"}

func newRouter(cfg config.Config, service *book.Service, m *metrics.Metrics, rl *httpx.RateLimitMiddleware, logger *zap.Logger) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.Text(w, "ok")
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := service.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		httpx.Text(w, "ready")
	})
	router.Handle("GET /metrics", m.Handler())

	bookHandler := book.NewHTTPHandler(service, logger)
	for _, prefix := range routePrefixes {
		bookHandler.Register(router, prefix)
	}

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.HTTP.EnableHSTS),
		httpx.CORSMiddleware(cfg.HTTP.CORSOrigins),
		rl.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.HTTP.MaxBodyBytes),
		httpx.MetricsMiddleware(m),
	)
}
