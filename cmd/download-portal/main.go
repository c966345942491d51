package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"download-portal/internal/cleanup"
	"download-portal/internal/config"
	"download-portal/internal/database"
	"download-portal/internal/gate"
	"download-portal/internal/pages"
	"download-portal/internal/shortener"
	"download-portal/internal/web"
	"download-portal/internal/web/handlers"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup structured logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting Download Portal", "version", "1.0.0")

	// Initialize stores
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	stores, err := database.Open(ctx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	providers := shortenerProviders(cfg)
	if configuredCount(providers) == 0 {
		slog.Warn("No shortener providers configured, users will be sent straight to download pages")
	}

	pageService := pages.NewService(stores.Pages, stores.Games, pages.WithRetention(cfg.PageRetention))
	accessGate := gate.New(pageService, shortener.NewService(providers...), cfg.PublicOrigin)

	server := web.NewServer(cfg, handlers.NewHandlers(pageService, accessGate, stores.Games))
	sweeper := cleanup.NewSweeper(pageService, cfg.CleanupInterval)

	return runServer(server, sweeper)
}

// shortenerProviders returns both providers. An unconfigured one fails its
// attempts and the other is used.
func shortenerProviders(cfg *config.Config) []shortener.Provider {
	providers := make([]shortener.Provider, 0, 2)
	for _, sc := range []config.ShortenerConfig{cfg.ShortenerA, cfg.ShortenerB} {
		providers = append(providers, shortener.Provider{Name: sc.Name, APIURL: sc.APIURL, APIToken: sc.APIToken})
	}
	return providers
}

func configuredCount(providers []shortener.Provider) int {
	n := 0
	for _, p := range providers {
		if p.Configured() {
			n++
		}
	}
	return n
}

func runServer(server *web.Server, sweeper *cleanup.Sweeper) error {
	// Create main context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start expired page cleanup routine
	go sweeper.Run(ctx)

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	}

	// Cancel context to stop the sweeper
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// setupLogging configures structured logging based on the log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)
}
