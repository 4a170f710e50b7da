package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brahma-hq/datasheet-tracker/constants"
	"github.com/brahma-hq/datasheet-tracker/internal/blob"
	"github.com/brahma-hq/datasheet-tracker/internal/entity"
	"github.com/brahma-hq/datasheet-tracker/internal/repository"
)

// FSIngestor reads datasheets from the local filesystem and places them in
// the object store, recording each upload in the database.
type FSIngestor struct {
	FilesRepo repository.DatasheetFileRepository
	Store     blob.Store
	Logger    *slog.Logger
}

func NewFSIngestor(f repository.DatasheetFileRepository, store blob.Store, logger *slog.Logger) *FSIngestor {
	return &FSIngestor{
		FilesRepo: f,
		Store:     store,
		Logger:    logger,
	}
}

func (i *FSIngestor) IngestPath(ctx context.Context, meta Metadata, path string) (IngestionResult, error) {
	var out IngestionResult

	if strings.TrimSpace(meta.Mfr) == "" || strings.TrimSpace(meta.Model) == "" {
		return out, errors.New("mfr and model are required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		i.Logger.Error("ingest.abs_path", "path", path, "error", err)
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		i.Logger.Warn("ingest.unsupported_ext", "path", abs, "ext", ext)
		return out, fmt.Errorf("unsupported or missing extension")
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		i.Logger.Error("ingest.read", "path", abs, "error", err)
		return out, err
	}

	sum := sha256.Sum256(data)
	now := time.Now().UTC()
	objectPath := BuildObjectPath(meta, abs, now)

	row, dedup, err := i.FilesRepo.UpsertByHash(ctx, &entity.DatasheetFile{
		Mfr:         meta.Mfr,
		Model:       meta.Model,
		SourcePath:  abs,
		ObjectPath:  objectPath,
		ContentHash: sum[:],
		FileSize:    len(data),
		Status:      constants.StatusUploaded,
		NeedsReview: true,
		UploadedAt:  now,
	})
	if err != nil {
		return out, err
	}

	if !dedup {
		if err := i.Store.Write(ctx, row.ObjectPath, data, "application/pdf"); err != nil {
			i.Logger.Error("ingest.store_write", "object_path", row.ObjectPath, "error", err)
			return out, err
		}
		if err := blob.WriteJSON(ctx, i.Store, MetadataObjectPath(row.ObjectPath), meta); err != nil {
			i.Logger.Error("ingest.metadata_write", "object_path", row.ObjectPath, "error", err)
			return out, err
		}
	}

	i.Logger.Info("ingest.ok", "file_id", row.ID, "object_path", row.ObjectPath, "deduplicated", dedup)
	out = IngestionResult{
		SourcePath:   row.SourcePath,
		ObjectPath:   row.ObjectPath,
		FileID:       row.ID.String(),
		Deduplicated: dedup,
		HashHex:      hex.EncodeToString(sum[:]),
		UploadedAt:   row.UploadedAt,
	}
	return out, nil
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(
	ctx context.Context,
	meta Metadata,
	root string,
	skipHidden bool,
) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if !AllowedExt(ext) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, meta, path)
		if err != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
