// Command api is the Customer Segmentation API server.
//
// Usage:
//
//	segment-api
//	MODEL_DIR=./models API_PORT=8080 segment-api

// @title Customer Segmentation API
// @version 1.0.0
// @description Classifies customers into behavioral segments from RFM signals (recency, frequency, monetary). Outlier segments come from threshold rules; everything else from a pre-fitted k-means model.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/seglytics/segment-api/internal/api"
	"github.com/seglytics/segment-api/internal/cache"
	"github.com/seglytics/segment-api/internal/config"
	"github.com/seglytics/segment-api/internal/history"
	"github.com/seglytics/segment-api/internal/model"

	_ "github.com/seglytics/segment-api/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Load model artifacts and business rules. Any failure is fatal:
	// serving never starts on a partial configuration.
	arts, err := model.Load(cfg.ModelDir)
	if err != nil {
		logger.Error("Failed to load model artifacts", "error", err, "model_dir", cfg.ModelDir)
		os.Exit(1)
	}
	logger.Info("Model artifacts loaded",
		"model_dir", arts.Dir,
		"clusters", arts.KMeans.NumClusters(),
		"monetary_threshold", arts.Rules.MonetaryThreshold,
		"frequency_threshold", arts.Rules.FrequencyThreshold)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Prediction history store (optional)
	var store *history.Store
	if cfg.HistoryEnabled() {
		logger.Info("Connecting to database...")
		store, err = history.New(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		go store.StartWorker(ctx)
		go store.StartRetention(ctx, cfg.HistoryRetention)
		logger.Info("Prediction history enabled",
			"retention", cfg.HistoryRetention,
			"max_conns", cfg.DBPoolMaxConns)
	} else {
		logger.Info("Prediction history disabled (no DATABASE_URL)")
	}

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Create router
	router, err := api.NewRouter(arts, store, appCache, cfg)
	if err != nil {
		logger.Error("Failed to build router", "error", err)
		os.Exit(1)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Customer Segmentation API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
