package ingest

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/brahma-hq/datasheet-tracker/constants"
)

var slugRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and collapses non-alphanumeric runs to single underscores.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unknown"
	}
	return s
}

// SafeFilename keeps the base name of p with unsafe characters replaced.
func SafeFilename(p string) string {
	base := filepath.Base(p)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return Slug(stem) + strings.ToLower(ext)
}

// UTCStamp formats t for object names, second resolution with a Z suffix.
func UTCStamp(t time.Time) string {
	return t.UTC().Format("20060102_150405Z")
}

// BuildObjectPath places an uploaded datasheet under the raw prefix,
// bucketed by manufacturer and stamped to keep re-uploads distinct.
func BuildObjectPath(meta Metadata, sourcePath string, uploadedAt time.Time) string {
	return path.Join(constants.RawRoot, Slug(meta.Mfr),
		UTCStamp(uploadedAt)+"_"+SafeFilename(sourcePath))
}

// MetadataObjectPath is the sidecar JSON path next to an uploaded datasheet.
func MetadataObjectPath(objectPath string) string {
	ext := path.Ext(objectPath)
	return strings.TrimSuffix(objectPath, ext) + "_metadata.json"
}

// AllowedExt checks if a file extension is in the allowed set (defaults to pdf).
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
