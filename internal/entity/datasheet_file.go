package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/brahma-hq/datasheet-tracker/constants"
)

// DatasheetFile represents an ingested datasheet for data transfer between layers.
type DatasheetFile struct {
	ID            uuid.UUID                 `json:"id"`
	Mfr           string                    `json:"mfr"`
	Model         string                    `json:"model"`
	SourcePath    string                    `json:"source_path"`
	ObjectPath    string                    `json:"object_path"`
	CandidatePath string                    `json:"candidate_path"`
	ContentHash   []byte                    `json:"content_hash"`
	FileSize      int                       `json:"file_size"`
	Status        constants.CandidateStatus `json:"status"`
	NeedsReview   bool                      `json:"needs_review"`
	UploadedAt    time.Time                 `json:"uploaded_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}
