package review

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/brahma-hq/datasheet-tracker/internal/blob"
	"github.com/brahma-hq/datasheet-tracker/internal/common"
	"github.com/brahma-hq/datasheet-tracker/internal/entity"
)

type recordingReviews struct {
	recorded []*entity.Review
}

func (r *recordingReviews) Record(_ context.Context, rev *entity.Review) (*entity.Review, error) {
	r.recorded = append(r.recorded, rev)
	return rev, nil
}

func (r *recordingReviews) ListByCandidate(_ context.Context, _ string) ([]*entity.Review, error) {
	return r.recorded, nil
}

func newTestService(t *testing.T) (*Service, *blob.FSStore, *recordingReviews) {
	t.Helper()
	store, err := blob.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	reviews := &recordingReviews{}
	svc := NewService(store, reviews, slog.New(slog.DiscardHandler))
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store, reviews
}

func writeCandidate(t *testing.T, store blob.Store, path string, doc map[string]any) {
	t.Helper()
	if err := blob.WriteJSON(context.Background(), store, path, doc); err != nil {
		t.Fatal(err)
	}
}

func TestListPending(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	writeCandidate(t, store, "02_candidates/modules/acme/a.json",
		map[string]any{"mfr": "Acme", "needs_review": true})
	writeCandidate(t, store, "02_candidates/modules/acme/b.json",
		map[string]any{"mfr": "Acme", "needs_review": false})

	got, err := svc.ListPending(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "02_candidates/modules/acme/a.json" {
		t.Errorf("ListPending = %v", got)
	}

	all, err := svc.ListPending(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("ListPending(showAll) = %v", all)
	}
}

func TestCandidateRejectsForeignPath(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Candidate(context.Background(), "03_masterdata/modules/acme/x.json")
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCandidateNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Candidate(context.Background(), "02_candidates/modules/acme/missing.json")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReviewApprove(t *testing.T) {
	ctx := context.Background()
	svc, store, reviews := newTestService(t)

	cand := "02_candidates/modules/trina_solar/sheet.json"
	writeCandidate(t, store, cand, map[string]any{
		"mfr":          "Trina Solar",
		"model":        "TSM-600",
		"weight":       "32kg",
		"frame":        "",
		"needs_review": true,
		"status":       "PENDING_REVIEW",
	})

	out, err := svc.Review(ctx, Request{
		CandidatePath: cand,
		Decision:      "Approved",
		Reviewer:      "alice",
		Patch:         map[string]any{"weight": "32.6kg", "frame": ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != "APPROVED" {
		t.Errorf("status = %q", out.Status)
	}
	if out.MasterPath != "03_masterdata/modules/trina_solar/tsm_600.json" {
		t.Errorf("master path = %q", out.MasterPath)
	}

	var master map[string]any
	if err := blob.ReadJSON(ctx, store, out.MasterPath, &master); err != nil {
		t.Fatal(err)
	}
	if master["weight"] != "32.6kg" {
		t.Errorf("patched weight = %v", master["weight"])
	}
	if master["frame"] != "" {
		t.Errorf("empty patch value should not overwrite, frame = %v", master["frame"])
	}
	if master["needs_review"] != false {
		t.Errorf("needs_review = %v", master["needs_review"])
	}

	var updated map[string]any
	if err := blob.ReadJSON(ctx, store, cand, &updated); err != nil {
		t.Fatal(err)
	}
	if updated["status"] != "APPROVED" {
		t.Errorf("candidate status = %v", updated["status"])
	}

	if len(reviews.recorded) != 1 || reviews.recorded[0].Reviewer != "alice" {
		t.Errorf("audit rows = %+v", reviews.recorded)
	}
	ok, err := store.Exists(ctx, out.ReviewPath)
	if err != nil || !ok {
		t.Errorf("review record missing at %s", out.ReviewPath)
	}
}

func TestReviewReject(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	cand := "02_candidates/modules/acme/sheet.json"
	writeCandidate(t, store, cand, map[string]any{
		"mfr": "Acme", "model": "A1", "needs_review": true,
	})

	out, err := svc.Review(ctx, Request{CandidatePath: cand, Decision: "rejected", Reviewer: "bob"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != "REJECTED" || out.MasterPath != "" {
		t.Errorf("outcome = %+v", out)
	}

	var updated map[string]any
	if err := blob.ReadJSON(ctx, store, cand, &updated); err != nil {
		t.Fatal(err)
	}
	if updated["status"] != "REJECTED" || updated["needs_review"] != false {
		t.Errorf("candidate after reject = %v", updated)
	}
}

func TestReviewBadDecision(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Review(context.Background(), Request{CandidatePath: "02_candidates/modules/a/x.json", Decision: "maybe"})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestApplyPatchDoesNotMutate(t *testing.T) {
	doc := map[string]any{"a": "1"}
	out := ApplyPatch(doc, map[string]any{"a": "2", "b": nil})
	if doc["a"] != "1" {
		t.Error("input mutated")
	}
	if out["a"] != "2" {
		t.Errorf("patched a = %v", out["a"])
	}
	if _, ok := out["b"]; ok {
		t.Error("nil patch value applied")
	}
}
