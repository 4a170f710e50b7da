package pipeline

import (
	"strings"

	"github.com/brahma-hq/datasheet-tracker/constants"
	"github.com/brahma-hq/datasheet-tracker/internal/extract"
	"github.com/brahma-hq/datasheet-tracker/internal/ingest"
)

// BuildCandidate merges the module identity with the extracted record into
// the candidate document written for review. Identity keys win over
// extracted fields of the same name.
func BuildCandidate(meta ingest.Metadata, objectPath string, rec extract.Record) map[string]any {
	doc := rec.Flatten()
	doc["mfr"] = meta.Mfr
	doc["model"] = meta.Model
	doc["source_pdf"] = objectPath
	doc["source_metadata"] = ingest.MetadataObjectPath(objectPath)
	doc["status"] = string(constants.StatusPendingReview)
	doc["needs_review"] = true
	return doc
}

// CandidatePath maps a raw object path to its candidate document path.
func CandidatePath(objectPath string) string {
	p := objectPath
	if strings.HasPrefix(p, constants.RawRoot) {
		p = constants.CandidateRoot + strings.TrimPrefix(p, constants.RawRoot)
	}
	if ext := strings.LastIndex(p, "."); ext >= 0 {
		p = p[:ext]
	}
	return p + ".json"
}
