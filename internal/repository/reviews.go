package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brahma-hq/datasheet-tracker/internal/entity"
)

type ReviewRepository interface {
	Record(ctx context.Context, rev *entity.Review) (*entity.Review, error)
	ListByCandidate(ctx context.Context, candidatePath string) ([]*entity.Review, error)
}

type reviewRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReviewRepository(pool *pgxpool.Pool, logger *slog.Logger) ReviewRepository {
	return &reviewRepo{
		pool:   pool,
		logger: logger,
	}
}

func (r *reviewRepo) Record(ctx context.Context, rev *entity.Review) (*entity.Review, error) {
	if rev.ID == uuid.Nil {
		rev.ID = uuid.New()
	}
	if rev.ReviewedAt.IsZero() {
		rev.ReviewedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reviews (id, candidate_path, decision, reviewer, comments, patch, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rev.ID, rev.CandidatePath, rev.Decision, rev.Reviewer, rev.Comments, rev.Patch, rev.ReviewedAt,
	)
	if err != nil {
		r.logger.Error("failed to record review", "candidate_path", rev.CandidatePath, "decision", rev.Decision, "error", err)
		return nil, err
	}
	return rev, nil
}

func (r *reviewRepo) ListByCandidate(ctx context.Context, candidatePath string) ([]*entity.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, candidate_path, decision, reviewer, comments, patch, reviewed_at
		 FROM reviews WHERE candidate_path = $1 ORDER BY reviewed_at`, candidatePath)
	if err != nil {
		r.logger.Error("failed to list reviews", "candidate_path", candidatePath, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Review
	for rows.Next() {
		var rev entity.Review
		if err := rows.Scan(&rev.ID, &rev.CandidatePath, &rev.Decision, &rev.Reviewer,
			&rev.Comments, &rev.Patch, &rev.ReviewedAt); err != nil {
			return nil, err
		}
		out = append(out, &rev)
	}
	return out, rows.Err()
}
