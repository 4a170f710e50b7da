package pipeline

import (
	"testing"

	"github.com/brahma-hq/datasheet-tracker/internal/extract"
	"github.com/brahma-hq/datasheet-tracker/internal/ingest"
)

func TestBuildCandidate(t *testing.T) {
	rec := extract.Parse(extract.RawDocument{
		Text: "Weight: 32.6kg\nmfr  WrongCorp",
	})
	meta := ingest.Metadata{Mfr: "Trina Solar", Model: "TSM-600"}
	obj := "01_raw_catalogues/modules/trina_solar/20260101_000000Z_sheet.pdf"

	doc := BuildCandidate(meta, obj, rec)

	if doc["mfr"] != "Trina Solar" || doc["model"] != "TSM-600" {
		t.Errorf("identity keys = %v / %v", doc["mfr"], doc["model"])
	}
	if doc["weight"] != "32.6kg" {
		t.Errorf("weight = %v", doc["weight"])
	}
	if doc["source_pdf"] != obj {
		t.Errorf("source_pdf = %v", doc["source_pdf"])
	}
	if doc["status"] != "PENDING_REVIEW" || doc["needs_review"] != true {
		t.Errorf("status = %v needs_review = %v", doc["status"], doc["needs_review"])
	}
	for k, v := range doc {
		if v == nil {
			t.Errorf("nil value for key %q", k)
		}
	}
}

func TestCandidatePath(t *testing.T) {
	got := CandidatePath("01_raw_catalogues/modules/acme/20260101_000000Z_x.pdf")
	want := "02_candidates/modules/acme/20260101_000000Z_x.json"
	if got != want {
		t.Errorf("CandidatePath = %q, want %q", got, want)
	}
}
