// Command gokittd runs the multi-search HTTP server (spec §6.1).
//
// Grounded on 2lar-b2/backend/cmd/api/main.go's bootstrap shape: load
// config, build dependencies, start the server in a goroutine, wait on
// SIGINT/SIGTERM, shut down gracefully.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kittclouds/gokitt-search/internal/config"
	"github.com/kittclouds/gokitt-search/internal/docstore"
	"github.com/kittclouds/gokitt-search/internal/httpapi"
	"github.com/kittclouds/gokitt-search/internal/pipeline"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store := docstore.New()
	engine := pipeline.New(store, cfg.ProximityRuleWeight, logger)
	router := httpapi.NewRouter(engine, logger, cfg.FederationDefaultLimit, cfg.FederationDefaultOffset)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("address", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch level {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
		if lvl, err := zap.ParseAtomicLevel(level); err == nil {
			cfg.Level = lvl
		}
	}
	return cfg.Build()
}
