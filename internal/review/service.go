// Package review implements the human approval step between candidate
// documents and master data.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brahma-hq/datasheet-tracker/constants"
	"github.com/brahma-hq/datasheet-tracker/internal/blob"
	"github.com/brahma-hq/datasheet-tracker/internal/common"
	"github.com/brahma-hq/datasheet-tracker/internal/entity"
	"github.com/brahma-hq/datasheet-tracker/internal/ingest"
	"github.com/brahma-hq/datasheet-tracker/internal/repository"
)

// Service lists candidates and applies review decisions.
type Service struct {
	Store   blob.Store
	Reviews repository.ReviewRepository
	Logger  *slog.Logger
	now     func() time.Time
}

func NewService(store blob.Store, reviews repository.ReviewRepository, logger *slog.Logger) *Service {
	return &Service{
		Store:   store,
		Reviews: reviews,
		Logger:  logger,
		now:     time.Now,
	}
}

// Request is one review decision for a candidate document.
type Request struct {
	CandidatePath string         `json:"candidate_path"`
	Decision      string         `json:"decision"`
	Reviewer      string         `json:"reviewer"`
	Comments      string         `json:"comments"`
	Patch         map[string]any `json:"patch"`
}

// Outcome reports where the decision landed.
type Outcome struct {
	ReviewID   string `json:"review_id"`
	ReviewPath string `json:"review_path"`
	MasterPath string `json:"master_path,omitempty"`
	Status     string `json:"status"`
	ReviewedAt string `json:"reviewed_at"`
}

// ListPending returns candidate document paths awaiting review. With showAll
// set, documents already decided are included too.
func (s *Service) ListPending(ctx context.Context, showAll bool) ([]string, error) {
	paths, err := s.Store.List(ctx, constants.CandidateRoot+"/")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range paths {
		if !strings.HasSuffix(p, ".json") || strings.HasPrefix(p, constants.ReviewRoot+"/") {
			continue
		}
		if showAll {
			out = append(out, p)
			continue
		}
		var doc map[string]any
		if err := blob.ReadJSON(ctx, s.Store, p, &doc); err != nil {
			s.Logger.Warn("review.skip_unreadable_candidate", "path", p, "error", err)
			continue
		}
		if needs, ok := doc["needs_review"].(bool); ok && needs {
			out = append(out, p)
		}
	}
	return out, nil
}

// Candidate loads one candidate document by path.
func (s *Service) Candidate(ctx context.Context, candidatePath string) (map[string]any, error) {
	if !strings.HasPrefix(candidatePath, constants.CandidateRoot+"/") {
		return nil, common.NewAppError("REVIEW_BAD_PATH", "path is outside the candidate prefix", common.ErrInvalidInput)
	}
	var doc map[string]any
	if err := blob.ReadJSON(ctx, s.Store, candidatePath, &doc); err != nil {
		if errors.Is(err, blob.ErrNotExist) {
			return nil, common.NewAppError("REVIEW_NOT_FOUND", "candidate not found", common.ErrNotFound)
		}
		return nil, err
	}
	return doc, nil
}

// Review applies one decision: always writes an audit record, and on approval
// writes the patched document to master data. The candidate document is
// rewritten with its final status either way.
func (s *Service) Review(ctx context.Context, req Request) (*Outcome, error) {
	decision := constants.ReviewDecision(strings.ToLower(strings.TrimSpace(req.Decision)))
	if decision != constants.DecisionApproved && decision != constants.DecisionRejected {
		return nil, common.NewAppError("REVIEW_BAD_DECISION", "decision must be approved or rejected", common.ErrInvalidInput)
	}
	doc, err := s.Candidate(ctx, req.CandidatePath)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	at := s.now().UTC()
	reviewPath := path.Join(constants.ReviewRoot, "review_"+strings.ReplaceAll(id.String(), "-", "")[:16]+".json")

	audit := entity.Review{
		ID:            id,
		CandidatePath: req.CandidatePath,
		Decision:      decision,
		Reviewer:      req.Reviewer,
		Comments:      req.Comments,
		Patch:         req.Patch,
		ReviewedAt:    at,
	}
	if err := blob.WriteJSON(ctx, s.Store, reviewPath, audit); err != nil {
		return nil, fmt.Errorf("write review record: %w", err)
	}
	if s.Reviews != nil {
		if _, err := s.Reviews.Record(ctx, &audit); err != nil {
			s.Logger.Error("review.audit_row_failed", "review_id", id, "error", err)
		}
	}

	out := &Outcome{
		ReviewID:   id.String(),
		ReviewPath: reviewPath,
		ReviewedAt: at.Format(time.RFC3339),
	}

	switch decision {
	case constants.DecisionApproved:
		final := ApplyPatch(doc, req.Patch)
		final["status"] = string(constants.StatusApproved)
		final["needs_review"] = false
		masterPath := MasterPath(final)
		if err := blob.WriteJSON(ctx, s.Store, masterPath, final); err != nil {
			return nil, fmt.Errorf("write master record: %w", err)
		}
		doc = final
		out.MasterPath = masterPath
		out.Status = string(constants.StatusApproved)
	case constants.DecisionRejected:
		doc["status"] = string(constants.StatusRejected)
		doc["needs_review"] = false
		out.Status = string(constants.StatusRejected)
	}

	if err := blob.WriteJSON(ctx, s.Store, req.CandidatePath, doc); err != nil {
		return nil, fmt.Errorf("rewrite candidate: %w", err)
	}

	s.Logger.Info("review.decided",
		"review_id", id,
		"candidate_path", req.CandidatePath,
		"decision", decision,
		"reviewer", req.Reviewer)
	return out, nil
}

// ApplyPatch overlays patch onto doc, ignoring empty patch values so a
// reviewer cannot accidentally blank a field. Returns a new map.
func ApplyPatch(doc map[string]any, patch map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for k, v := range patch {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// MasterPath places an approved document under the master prefix, bucketed
// by manufacturer and named after the model.
func MasterPath(doc map[string]any) string {
	mfr, _ := doc["mfr"].(string)
	model, _ := doc["model"].(string)
	return path.Join(constants.MasterRoot, ingest.Slug(mfr), ingest.Slug(model)+".json")
}
