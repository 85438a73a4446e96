// Package handler provides HTTP handlers for all API endpoints. Handlers
// call the segmentation core directly — no service layer — and translate
// its error taxonomy into status codes: input errors are the caller's
// problem, everything else is a broken deployment.
package handler

import (
	"net/http"
	"time"

	"github.com/seglytics/segment-api/internal/api/respond"
	"github.com/seglytics/segment-api/internal/cache"
	"github.com/seglytics/segment-api/internal/config"
	"github.com/seglytics/segment-api/internal/history"
	"github.com/seglytics/segment-api/internal/model"
	"github.com/seglytics/segment-api/internal/segment"
)

// Handler holds shared dependencies for all endpoint handlers.
// history is nil when no database is configured.
type Handler struct {
	classifier *segment.Classifier
	arts       *model.Artifacts
	history    *history.Store
	cache      *cache.Cache
	cfg        *config.Config
}

// New creates a Handler with shared dependencies.
func New(arts *model.Artifacts, store *history.Store, c *cache.Cache, cfg *config.Config) (*Handler, error) {
	clf, err := arts.Classifier()
	if err != nil {
		return nil, err
	}
	return &Handler{
		classifier: clf,
		arts:       arts,
		history:    store,
		cache:      c,
		cfg:        cfg,
	}, nil
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Customer Segmentation API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns liveness status; model_loaded is always true once serving, because startup fails fast on any artifact problem.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"message":      "Customer Segmentation API is running",
		"model_loaded": true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckModel echoes the active model configuration for observability.
// @Summary Model readiness
// @Description Echoes the active outlier thresholds, cluster count, and artifact directory.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/model [get]
func (h *Handler) HealthCheckModel(w http.ResponseWriter, r *http.Request) {
	rules := h.classifier.Rules()
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"thresholds": map[string]float64{
			"monetary":  rules.MonetaryThreshold,
			"frequency": rules.FrequencyThreshold,
		},
		"clusters":  h.arts.KMeans.NumClusters(),
		"model_dir": h.arts.Dir,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies prediction history connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity for the prediction history store.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "disabled",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.history.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
