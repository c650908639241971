package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/knnvote/internal/metrics"
)

// RouterConfig holds the middleware settings of the HTTP router.
type RouterConfig struct {
	APIKeys []string
	RPS     float64 // 0 disables rate limiting
	Burst   int
}

// NewRouter mounts the API under /api/v1 and the probes at the root.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(RateLimitMiddleware(cfg.RPS, cfg.Burst))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/datasets", s.ListDatasets)
		r.Get("/datasets/{dataset}", s.GetDataset)
		r.Post("/datasets/{dataset}/classify", s.Classify)
	})

	return r
}
