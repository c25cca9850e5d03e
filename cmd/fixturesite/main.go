package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gti/practice-automation-e2e/internal/config"
	"github.com/gti/practice-automation-e2e/internal/fixturesite"
	"github.com/gti/practice-automation-e2e/internal/logging"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	site, err := fixturesite.New(fixturesite.Options{
		LiftoffDelay: cfg.LiftoffDelay,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("failed to build fixture site", zap.Error(err))
	}

	l, err := net.Listen("tcp", cfg.FixtureAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.FixtureAddr), zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		if err := site.Serve(l); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down fixture site")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := site.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", zap.Error(err))
	}

	logger.Info("fixture site stopped")
}
