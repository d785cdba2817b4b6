package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"catalog-dashboard/internal/api"
	"catalog-dashboard/internal/cart"
	"catalog-dashboard/internal/catalog"
	"catalog-dashboard/internal/config"
	"catalog-dashboard/internal/logger"
	"catalog-dashboard/internal/store"
)

const appName = "CatalogDashboard"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	// .env is optional; system environment variables always win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("error loading configuration", zap.Error(err))
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()
	log.Info("starting service",
		zap.String("appEnv", cfg.AppEnv),
		zap.String("catalogBaseURL", cfg.Catalog.BaseURL),
	)

	// --- Local key-value store (cart, preferences) ---
	kv, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		log.Fatal("failed to open local store", zap.String("path", cfg.Store.Path), zap.Error(err))
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Warn("error closing local store on deferred cleanup", zap.Error(err))
		}
	}()

	// --- Upstream catalog client ---
	fetcher := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	// --- HTTP API ---
	handler := api.NewHTTPHandler(fetcher, cart.NewService(kv), store.NewPrefs(kv))

	router := chi.NewRouter()
	setupBaseMiddleware(router)
	registerHealthCheck(router, kv)
	handler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      router,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server ListenAndServe error", zap.Error(err))
		}
		log.Info("HTTP server has stopped")
	}()

	// --- Graceful Shutdown ---
	waitForShutdown(log, httpServer, kv)
	log.Info("service shutdown sequence finished")
}

func setupBaseMiddleware(router *chi.Mux) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
}

func registerHealthCheck(router *chi.Mux, kv store.KV) {
	router.Get("/api/v1/healthz", func(w http.ResponseWriter, r *http.Request) {
		storeStatus := "healthy"
		if _, _, err := kv.Get("darkMode"); err != nil {
			storeStatus = "unhealthy"
			logger.L().Warn("health check store probe failed", zap.Error(err))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK) // always 200, payload carries the detailed status
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": appName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"store":       storeStatus,
		})
	})
}

func waitForShutdown(log *zap.Logger, httpServer *http.Server, kv store.KV) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	received := <-sigChan
	log.Info("received signal, starting graceful shutdown", zap.String("signal", received.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		log.Info("HTTP server gracefully shut down")
	}

	if err := kv.Close(); err != nil {
		log.Warn("error closing local store", zap.Error(err))
	}
}
