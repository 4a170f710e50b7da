package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	wsRun         = regexp.MustCompile(`\s+`)
	nonAlnumRun   = regexp.MustCompile(`[^a-z0-9]+`)
	underscoreRun = regexp.MustCompile(`_+`)
)

// reservedKeys are identifiers a SQL-backed consumer would misread.
var reservedKeys = map[string]struct{}{
	"select": {},
	"from":   {},
	"where":  {},
	"table":  {},
	"group":  {},
	"order":  {},
}

// NormalizeWhitespace collapses every whitespace run to a single space and
// trims. Total: empty input yields the empty string.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(wsRun.ReplaceAllString(s, " "))
}

// NormalizeKey converts a free-text label into a safe column identifier:
// lowercase [a-z0-9_], non-empty, never a bare SQL keyword. Every output key
// of the engine passes through here, so a tabular consumer can use keys as
// column names without further escaping.
func NormalizeKey(label string) string {
	s := strings.ToLower(strings.TrimSpace(norm.NFKC.String(label)))
	s = strings.ReplaceAll(s, "%", " pct ")
	s = strings.ReplaceAll(s, "°", " deg ")
	s = nonAlnumRun.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unnamed"
	}
	if _, ok := reservedKeys[s]; ok {
		s = "f_" + s
	}
	return s
}
