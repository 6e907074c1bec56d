// Command server runs the reconciliation HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"agrodash/database"
	"agrodash/internal/cache"
	"agrodash/internal/config"
	"agrodash/server"
	"agrodash/server/services"
	"agrodash/source"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SnapshotDBPath), 0o755); err != nil {
		logger.Warn("failed to create snapshot directory", "error", err)
	}

	var store source.Snapshotter
	snapshotStore, err := database.NewSnapshotStore(cfg.SnapshotDBPath)
	if err != nil {
		logger.Warn("snapshot store unavailable, running without it", "path", cfg.SnapshotDBPath, "error", err)
	} else {
		defer snapshotStore.Close()
		store = snapshotStore
	}

	client := source.NewSheetsClient(cfg.FetchTimeout, logger)
	provider := source.NewProvider(client, store, cfg.SnapshotMaxAge, logger)

	svc := services.NewReconciliationService(
		provider,
		source.DatasetSpec{
			Name:      source.DatasetProduction,
			SheetURL:  cfg.ProductionSheetURL,
			Worksheet: cfg.ProductionWorksheet,
			LocalGlob: cfg.ProductionLocalGlob,
		},
		source.DatasetSpec{
			Name:      source.DatasetQuality,
			SheetURL:  cfg.QualitySheetURL,
			Worksheet: cfg.QualityWorksheet,
			LocalGlob: cfg.QualityLocalGlob,
		},
		cache.NewMemo(cfg.CacheTTL),
		logger,
	)

	srv := server.New(svc, cfg.DefaultQualityWeight, logger)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
