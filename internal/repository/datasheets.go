package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brahma-hq/datasheet-tracker/constants"
	"github.com/brahma-hq/datasheet-tracker/internal/common"
	"github.com/brahma-hq/datasheet-tracker/internal/entity"
)

type DatasheetFileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.DatasheetFile, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.DatasheetFile, error)
	Create(ctx context.Context, f *entity.DatasheetFile) (*entity.DatasheetFile, error)
	UpsertByHash(ctx context.Context, f *entity.DatasheetFile) (*entity.DatasheetFile, bool, error)
	SetStatus(ctx context.Context, id uuid.UUID, status constants.CandidateStatus, needsReview bool) error
	SetCandidatePath(ctx context.Context, id uuid.UUID, candidatePath string) error
	ListNeedingReview(ctx context.Context) ([]*entity.DatasheetFile, error)
	ListByStatus(ctx context.Context, statuses ...constants.CandidateStatus) ([]*entity.DatasheetFile, error)
}

type datasheetFileRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDatasheetFileRepository(pool *pgxpool.Pool, logger *slog.Logger) DatasheetFileRepository {
	return &datasheetFileRepo{
		pool:   pool,
		logger: logger,
	}
}

const datasheetFileColumns = `id, mfr, model, source_path, object_path, candidate_path,
	content_hash, file_size, status, needs_review, uploaded_at, updated_at`

func scanDatasheetFile(row pgx.Row) (*entity.DatasheetFile, error) {
	var f entity.DatasheetFile
	err := row.Scan(
		&f.ID, &f.Mfr, &f.Model, &f.SourcePath, &f.ObjectPath, &f.CandidatePath,
		&f.ContentHash, &f.FileSize, &f.Status, &f.NeedsReview, &f.UploadedAt, &f.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *datasheetFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.DatasheetFile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+datasheetFileColumns+` FROM datasheet_files WHERE id = $1`, id)
	f, err := scanDatasheetFile(row)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		r.logger.Error("failed to get datasheet file by id", "file_id", id, "error", err)
	}
	return f, err
}

func (r *datasheetFileRepo) GetByHash(ctx context.Context, hash []byte) (*entity.DatasheetFile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+datasheetFileColumns+` FROM datasheet_files WHERE content_hash = $1`, hash)
	f, err := scanDatasheetFile(row)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		r.logger.Error("failed to get datasheet file by hash", "error", err)
	}
	return f, err
}

func (r *datasheetFileRepo) Create(ctx context.Context, f *entity.DatasheetFile) (*entity.DatasheetFile, error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	f.UpdatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO datasheet_files (`+datasheetFileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		f.ID, f.Mfr, f.Model, f.SourcePath, f.ObjectPath, f.CandidatePath,
		f.ContentHash, f.FileSize, f.Status, f.NeedsReview, f.UploadedAt, f.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create datasheet file", "mfr", f.Mfr, "model", f.Model, "source_path", f.SourcePath, "error", err)
		return nil, err
	}
	return f, nil
}

func (r *datasheetFileRepo) UpsertByHash(ctx context.Context, f *entity.DatasheetFile) (*entity.DatasheetFile, bool, error) {
	if existing, err := r.GetByHash(ctx, f.ContentHash); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}
	row, err := r.Create(ctx, f)
	if err != nil {
		r.logger.Error("failed to upsert datasheet file by hash", "mfr", f.Mfr, "model", f.Model, "source_path", f.SourcePath, "error", err)
		return nil, false, err
	}
	return row, false, nil
}

func (r *datasheetFileRepo) SetStatus(ctx context.Context, id uuid.UUID, status constants.CandidateStatus, needsReview bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE datasheet_files SET status = $2, needs_review = $3, updated_at = $4 WHERE id = $1`,
		id, status, needsReview, time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("failed to set datasheet file status", "file_id", id, "status", status, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *datasheetFileRepo) SetCandidatePath(ctx context.Context, id uuid.UUID, candidatePath string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE datasheet_files SET candidate_path = $2, updated_at = $3 WHERE id = $1`,
		id, candidatePath, time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("failed to set candidate path", "file_id", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *datasheetFileRepo) ListNeedingReview(ctx context.Context) ([]*entity.DatasheetFile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+datasheetFileColumns+` FROM datasheet_files
		 WHERE needs_review ORDER BY uploaded_at`)
	if err != nil {
		r.logger.Error("failed to list datasheet files needing review", "error", err)
		return nil, err
	}
	defer rows.Close()
	return collectDatasheetFiles(rows)
}

func (r *datasheetFileRepo) ListByStatus(ctx context.Context, statuses ...constants.CandidateStatus) ([]*entity.DatasheetFile, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+datasheetFileColumns+` FROM datasheet_files
		 WHERE status = ANY($1) ORDER BY uploaded_at`, names)
	if err != nil {
		r.logger.Error("failed to list datasheet files by status", "statuses", names, "error", err)
		return nil, err
	}
	defer rows.Close()
	return collectDatasheetFiles(rows)
}

func collectDatasheetFiles(rows pgx.Rows) ([]*entity.DatasheetFile, error) {
	var out []*entity.DatasheetFile
	for rows.Next() {
		f, err := scanDatasheetFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
