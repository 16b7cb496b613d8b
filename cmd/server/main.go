package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ingredientlens/backend/config"
	httpDelivery "github.com/ingredientlens/backend/internal/delivery/http"
	"github.com/ingredientlens/backend/internal/domain"
	"github.com/ingredientlens/backend/internal/infrastructure/cache"
	"github.com/ingredientlens/backend/internal/infrastructure/oracle"
	"github.com/ingredientlens/backend/internal/infrastructure/retail"
	"github.com/ingredientlens/backend/internal/usecase"
	"github.com/ingredientlens/backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// closableStore is a cache store that owns a connection or goroutine
type closableStore interface {
	domain.CacheStore
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Environment, cfg.Log.Level)

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cacheType", cfg.Cache.Type).
		Dur("cacheTTL", cfg.Cache.TTL).
		Msg("starting IngredientLens backend v1.0.0")

	// Initialize infrastructure dependencies
	store := openCacheStore(cfg.Cache, log)
	defer store.Close()

	productCache := cache.NewProductCache(store, cfg.Cache.Namespace, cfg.Cache.TTL, log)

	retailClient := retail.NewClient(retail.ClientConfig{
		BaseURL:     cfg.Retail.BaseURL,
		MinInterval: cfg.Retail.MinInterval,
		Timeout:     cfg.Retail.Timeout,
		UserAgent:   cfg.Retail.UserAgent,
		Logger:      log,
	})
	log.Info().Str("baseUrl", cfg.Retail.BaseURL).Dur("minInterval", cfg.Retail.MinInterval).Msg("retail client configured")

	oracleClient := oracle.NewClient(oracle.ClientConfig{
		APIKey:  cfg.Oracle.APIKey,
		BaseURL: cfg.Oracle.BaseURL,
		Model:   cfg.Oracle.Model,
		Timeout: cfg.Oracle.Timeout,
		Logger:  log,
	})
	log.Info().Str("model", cfg.Oracle.Model).Str("baseUrl", cfg.Oracle.BaseURL).Msg("oracle client configured")

	// Initialize usecase layer
	productService := usecase.NewProductService(retailClient, oracleClient, productCache, log)
	analysisService := usecase.NewAnalysisService(oracleClient, log)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(productService, analysisService, log)
	router := httpDelivery.SetupRouter(cfg, handler, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// openCacheStore connects to Redis when configured and falls back to the
// in-memory store when Redis is unreachable.
func openCacheStore(cfg config.CacheConfig, log zerolog.Logger) closableStore {
	if cfg.Type != "redis" {
		log.Info().Msg("using in-memory cache")
		return cache.NewMemoryStore()
	}

	redisStore, err := cache.NewRedisStoreFromURL(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("invalid Redis URL, falling back to in-memory cache")
		return cache.NewMemoryStore()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisStore.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unreachable, falling back to in-memory cache")
		redisStore.Close()
		return cache.NewMemoryStore()
	}

	log.Info().Msg("connected to Redis")
	return redisStore
}
