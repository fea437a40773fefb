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

	"github.com/spf13/cobra"

	"github.com/terra-clan/ideaforge/internal/api"
	"github.com/terra-clan/ideaforge/internal/brainstorm"
	"github.com/terra-clan/ideaforge/internal/cache"
	"github.com/terra-clan/ideaforge/internal/config"
	"github.com/terra-clan/ideaforge/internal/discovery"
	"github.com/terra-clan/ideaforge/internal/llm"
	"github.com/terra-clan/ideaforge/internal/templates"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the form page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)

	slog.Info("starting ideaforge",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"ollama", cfg.Providers.OllamaEndpoint,
		"lmstudio", cfg.Providers.LMStudioEndpoint,
	)

	// Register local LLM providers
	registry := llm.NewRegistry()
	registry.Register(llm.NewOllamaProvider(cfg.Providers.OllamaEndpoint, llm.WithProbeTimeout(cfg.Providers.ProbeTimeout)))
	registry.Register(llm.NewLMStudioProvider(cfg.Providers.LMStudioEndpoint, llm.WithProbeTimeout(cfg.Providers.ProbeTimeout)))

	// Provider cache
	var store cache.Store = cache.NewMemoryStore()
	var redisStore *cache.RedisStore
	if cfg.Redis.Enabled() {
		initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
		redisStore, err = cache.NewRedisStore(initCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Cache.TTL)
		initCancel()
		if err != nil {
			return fmt.Errorf("provider cache: %w", err)
		}
		store = redisStore
	}

	hub := discovery.NewHub()
	providers := discovery.NewService(registry, store, cfg.Cache.TTL, discovery.WithHub(hub))

	// Load templates
	templateLoader, err := templates.NewLoader()
	if err != nil {
		return fmt.Errorf("failed to load built-in templates: %w", err)
	}
	if cfg.Templates.Dir != "" {
		if err := templateLoader.LoadFromDir(cfg.Templates.Dir); err != nil {
			slog.Warn("failed to load templates from dir", "dir", cfg.Templates.Dir, "error", err)
		}
	}
	slog.Info("templates loaded", "buckets", templateLoader.Len())

	generator := brainstorm.NewGenerator(registry, templateLoader, cfg.Generate.Timeout)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start provider poller
	poller := discovery.NewPoller(providers, hub, cfg.Providers.PollInterval)
	poller.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(
		cfg.Server,
		providers,
		generator,
		templateLoader,
		hub,
		api.NewRateLimiter(cfg.Generate.RatePerMinute),
		cfg.Generate.Timeout,
	)
	if redisStore != nil {
		server.AddReadinessCheck("redis", redisStore.HealthCheck)
	}
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Generate.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		slog.Error("HTTP server error", "error", err)
		cancel()
		return err
	}

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	slog.Info("ideaforge stopped")
	return nil
}
