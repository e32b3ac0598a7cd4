// Package main is the entrypoint for the logsage API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/logsage/logsage/internal/ai"
	"github.com/logsage/logsage/internal/api"
	"github.com/logsage/logsage/internal/api/handler"
	mw "github.com/logsage/logsage/internal/api/middleware"
	"github.com/logsage/logsage/internal/cache"
	"github.com/logsage/logsage/internal/config"
	"github.com/logsage/logsage/internal/parser"
	"github.com/logsage/logsage/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create analysis cache. Without REDIS_URL the server runs with the
	// in-memory cache, which is fine for single-instance deployments.
	var analysisCache cache.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")
		analysisCache = redisCache
	} else {
		slog.Info("no REDIS_URL set, using in-memory cache")
		analysisCache = cache.NewMemoryCache(1024)
	}

	// 5. Create AI provider
	aiProvider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name())

	// 6. Create store and pipeline
	pgStore := store.NewPostgresStore(pool)

	logParser := parser.New(parser.Options{})
	pipeline := ai.NewService(aiProvider, logParser, analysisCache, pgStore,
		cfg.AI.InferenceTimeout, cfg.Analysis.SampleBudget, cfg.Analysis.CacheTTL)

	// 7. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(analysisCache, 60)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler:    handler.NewHealthHandler(pgStore, analysisCache),
		AnalyzeHandler:   handler.NewAnalyzeHandler(pipeline),
		PollJobHandler:   handler.NewPollJobHandler(pgStore),
		GetResultHandler: handler.NewGetResultHandler(pgStore),
		ParseHandler:     handler.NewParseHandler(logParser),
		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
