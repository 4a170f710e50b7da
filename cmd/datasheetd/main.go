package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brahma-hq/datasheet-tracker/internal/async"
	"github.com/brahma-hq/datasheet-tracker/internal/blob"
	"github.com/brahma-hq/datasheet-tracker/internal/common"
	"github.com/brahma-hq/datasheet-tracker/internal/export"
	"github.com/brahma-hq/datasheet-tracker/internal/pipeline"
	"github.com/brahma-hq/datasheet-tracker/internal/publish"
	repo "github.com/brahma-hq/datasheet-tracker/internal/repository"
	"github.com/brahma-hq/datasheet-tracker/internal/review"
	"github.com/brahma-hq/datasheet-tracker/internal/server"
)

func main() {
	// Setup structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time and level attributes, keep message and other variables
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	if err := repo.EnsureSchema(ctx, pool, logger); err != nil {
		os.Exit(1)
	}
	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	store, err := blob.NewFSStore(cfg.Store.Root)
	if err != nil {
		logger.Error("failed to open object store", "root", cfg.Store.Root, "error", err)
		os.Exit(1)
	}

	filesRepo := repo.NewDatasheetFileRepository(pool, logger)
	reviewsRepo := repo.NewReviewRepository(pool, logger)

	processor := pipeline.NewProcessor(logger, filesRepo, store)
	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(6),
		async.WithQueueSize(512),
		async.WithProcessTimeout(3*time.Minute),
	)

	reviewSvc := review.NewService(store, reviewsRepo, logger)
	publisher := publish.NewPublisher(store, cfg.Publish, logger)
	exporter := export.NewService(store, cfg.Publish.MasterRoot, logger)

	srv := server.New(logger, reviewSvc, publisher, exporter, filesRepo, queue, cfg.Server)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("datasheetd listening", "addr", cfg.Server.Addr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	queue.Shutdown(context.Background())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}
