package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/brahma-hq/datasheet-tracker/internal/async"
	"github.com/brahma-hq/datasheet-tracker/internal/blob"
	"github.com/brahma-hq/datasheet-tracker/internal/common"
	"github.com/brahma-hq/datasheet-tracker/internal/ingest"
	"github.com/brahma-hq/datasheet-tracker/internal/pipeline"
	repo "github.com/brahma-hq/datasheet-tracker/internal/repository"
)

func main() {
	var (
		mfr        = flag.String("mfr", "", "manufacturer name (required)")
		model      = flag.String("model", "", "module model (required)")
		path       = flag.String("path", "", "datasheet file or directory to ingest (required)")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
		process    = flag.Bool("process", true, "run extraction after ingest")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *mfr == "" || *model == "" || *path == "" {
		logger.Error("-mfr, -model and -path are required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)
	if err := repo.EnsureSchema(ctx, pool, logger); err != nil {
		os.Exit(1)
	}

	store, err := blob.NewFSStore(cfg.Store.Root)
	if err != nil {
		logger.Error("failed to open object store", "root", cfg.Store.Root, "error", err)
		os.Exit(1)
	}

	filesRepo := repo.NewDatasheetFileRepository(pool, logger)
	ingestor := ingest.NewFSIngestor(filesRepo, store, logger)
	meta := ingest.Metadata{Mfr: *mfr, Model: *model}

	info, err := os.Stat(*path)
	if err != nil {
		logger.Error("cannot stat path", "path", *path, "error", err)
		os.Exit(1)
	}

	var results []ingest.IngestionResult
	if info.IsDir() {
		var stats ingest.DirStats
		results, stats, err = ingestor.IngestDirectory(ctx, meta, *path, *skipHidden)
		if err != nil {
			logger.Error("directory ingest failed", "error", err)
			os.Exit(1)
		}
		logger.Info("directory ingest done",
			"scanned", stats.Scanned,
			"matched", stats.Matched,
			"succeeded", stats.Succeeded,
			"deduplicated", stats.Deduplicated,
			"failed", stats.Failed)
	} else {
		r, err := ingestor.IngestPath(ctx, meta, *path)
		if err != nil {
			logger.Error("ingest failed", "path", *path, "error", err)
			os.Exit(1)
		}
		results = append(results, r)
	}

	if !*process {
		return
	}

	processor := pipeline.NewProcessor(logger, filesRepo, store)
	queue := async.NewProcessorQueue(processor, logger, async.WithWorkers(4))
	traceID := uuid.NewString()
	for _, r := range results {
		if r.Err != "" || r.FileID == "" {
			continue
		}
		id, err := uuid.Parse(r.FileID)
		if err != nil {
			continue
		}
		_ = queue.Enqueue(ctx, async.Job{FileID: id, SubmittedAt: time.Now(), TraceID: traceID})
	}
	queue.Shutdown(context.Background())
}
