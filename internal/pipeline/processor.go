// Package pipeline turns uploaded datasheets into candidate documents.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brahma-hq/datasheet-tracker/constants"
	"github.com/brahma-hq/datasheet-tracker/internal/blob"
	"github.com/brahma-hq/datasheet-tracker/internal/extract"
	"github.com/brahma-hq/datasheet-tracker/internal/ingest"
	"github.com/brahma-hq/datasheet-tracker/internal/pdfdoc"
	"github.com/brahma-hq/datasheet-tracker/internal/repository"
)

// Processor runs the decode and extraction stages for one uploaded file.
type Processor struct {
	Logger *slog.Logger
	Files  repository.DatasheetFileRepository
	Store  blob.Store
}

func NewProcessor(logger *slog.Logger, files repository.DatasheetFileRepository, store blob.Store) *Processor {
	return &Processor{
		Logger: logger,
		Files:  files,
		Store:  store,
	}
}

// ProcessFile decodes the stored PDF, extracts parameters, and writes the
// candidate document. Decode failures are recorded on the file row.
func (p *Processor) ProcessFile(ctx context.Context, fileID uuid.UUID) error {
	row, err := p.Files.GetByID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("load datasheet file: %w", err)
	}
	p.Logger.Info("extract.start", "file_id", fileID, "object_path", row.ObjectPath)

	data, err := p.Store.Read(ctx, row.ObjectPath)
	if err != nil {
		return fmt.Errorf("read object %s: %w", row.ObjectPath, err)
	}

	doc, err := pdfdoc.Decode(data)
	if err != nil {
		p.Logger.Error("extract.decode_failed", "file_id", fileID, "error", err)
		if serr := p.Files.SetStatus(ctx, fileID, constants.StatusDecodeFailed, false); serr != nil {
			p.Logger.Error("extract.status_update_failed", "file_id", fileID, "error", serr)
		}
		return fmt.Errorf("decode %s: %w", row.ObjectPath, err)
	}

	rec := extract.Parse(doc)
	meta := ingest.Metadata{Mfr: row.Mfr, Model: row.Model}
	candidate := BuildCandidate(meta, row.ObjectPath, rec)
	candidatePath := CandidatePath(row.ObjectPath)

	if err := blob.WriteJSON(ctx, p.Store, candidatePath, candidate); err != nil {
		return fmt.Errorf("write candidate %s: %w", candidatePath, err)
	}
	if err := p.Files.SetCandidatePath(ctx, fileID, candidatePath); err != nil {
		return err
	}
	if err := p.Files.SetStatus(ctx, fileID, constants.StatusPendingReview, true); err != nil {
		return err
	}

	p.Logger.Info("extract.ok",
		"file_id", fileID,
		"candidate_path", candidatePath,
		"method", rec.Method,
		"variants", len(rec.Variants))
	return nil
}
