package ingest

import (
	"context"
	"time"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	ObjectPath   string
	FileID       string
	Deduplicated bool
	HashHex      string
	UploadedAt   time.Time
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Metadata identifies the module a datasheet describes.
type Metadata struct {
	Mfr   string `json:"mfr"`
	Model string `json:"model"`
}

// Ingestor is the behavior the service depends on.
type Ingestor interface {
	// IngestPath ingests a single datasheet path.
	IngestPath(ctx context.Context, meta Metadata, path string) (IngestionResult, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, meta Metadata, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
