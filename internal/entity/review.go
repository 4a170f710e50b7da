package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/brahma-hq/datasheet-tracker/constants"
)

// Review is the audit record of a single review decision.
type Review struct {
	ID            uuid.UUID                `json:"id"`
	CandidatePath string                   `json:"candidate_path"`
	Decision      constants.ReviewDecision `json:"decision"`
	Reviewer      string                   `json:"reviewer"`
	Comments      string                   `json:"comments"`
	Patch         map[string]any           `json:"patch,omitempty"`
	ReviewedAt    time.Time                `json:"reviewed_at"`
}
