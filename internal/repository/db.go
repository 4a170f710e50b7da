package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// Open creates a pgx pool from the configuration.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "datasheet-tracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// Close closes the database connections gracefully
func Close(pool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("closing database connections")
	if pool != nil {
		pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the pool, bounded by timeout when one is set.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS datasheet_files (
	id UUID PRIMARY KEY,
	mfr TEXT NOT NULL,
	model TEXT NOT NULL,
	source_path TEXT NOT NULL,
	object_path TEXT NOT NULL,
	candidate_path TEXT NOT NULL DEFAULT '',
	content_hash BYTEA NOT NULL,
	file_size INTEGER NOT NULL,
	status TEXT NOT NULL,
	needs_review BOOLEAN NOT NULL DEFAULT TRUE,
	uploaded_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS datasheet_files_content_hash_idx
	ON datasheet_files (content_hash);

CREATE TABLE IF NOT EXISTS reviews (
	id UUID PRIMARY KEY,
	candidate_path TEXT NOT NULL,
	decision TEXT NOT NULL,
	reviewer TEXT NOT NULL,
	comments TEXT NOT NULL DEFAULT '',
	patch JSONB,
	reviewed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS reviews_candidate_path_idx
	ON reviews (candidate_path);
`

// EnsureSchema creates the tables the repositories depend on.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	logger.Debug("ensuring database schema")
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		logger.Error("failed to ensure database schema", "error", err)
		return err
	}
	return nil
}
