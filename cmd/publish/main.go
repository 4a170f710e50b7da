// Command publish compiles the master data prefix into a release, working
// directly against the object store without the HTTP server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/brahma-hq/datasheet-tracker/internal/blob"
	"github.com/brahma-hq/datasheet-tracker/internal/common"
	"github.com/brahma-hq/datasheet-tracker/internal/publish"
)

func main() {
	var (
		notes  = flag.String("notes", "", "free-form release notes")
		dryRun = flag.Bool("dry-run", false, "validate and count without writing a release")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := common.LoadConfig()
	if cfg.Store.Root == "" {
		logger.Error("STORE_ROOT is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := blob.NewFSStore(cfg.Store.Root)
	if err != nil {
		logger.Error("failed to open object store", "root", cfg.Store.Root, "error", err)
		os.Exit(1)
	}

	publisher := publish.NewPublisher(store, cfg.Publish, logger)
	res, err := publisher.Publish(ctx, *notes, *dryRun)
	if err != nil {
		logger.Error("publish failed", "error", err)
		os.Exit(1)
	}

	logger.Info("publish done",
		"release_id", res.ReleaseID,
		"records", res.Records,
		"valid", res.Valid,
		"invalid", res.Invalid,
		"dry_run", res.DryRun)
	for _, out := range res.Outputs {
		logger.Info("release output", "path", out)
	}
}
