package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/seglytics/segment-api/internal/api/handler"
	"github.com/seglytics/segment-api/internal/cache"
	"github.com/seglytics/segment-api/internal/config"
	"github.com/seglytics/segment-api/internal/history"
	"github.com/seglytics/segment-api/internal/model"
)

// NewRouter creates and configures the Chi router with all middleware and
// routes. store may be nil when the prediction history is disabled.
func NewRouter(arts *model.Artifacts, store *history.Store, appCache *cache.Cache, cfg *config.Config) (*chi.Mux, error) {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h, err := handler.New(arts, store, appCache, cfg)
	if err != nil {
		return nil, err
	}

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/model", h.HealthCheckModel)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Classification
		r.Post("/predict", h.Predict)

		// Segment catalog
		r.Get("/segments", h.GetSegments)

		// Prediction history
		r.Get("/predictions/recent", h.GetRecentPredictions)
	})

	return r, nil
}
