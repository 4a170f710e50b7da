package extract

import (
	"regexp"
	"strings"
)

const (
	minLabelLen = 3
	minLineLen  = 6
)

// TablesKV scans every table row for a label/value pair: normalize cells,
// drop the empty ones, and read the first two that remain. Rows are visited
// in document order; duplicate keys follow FieldMap.Register semantics.
func TablesKV(tables []Table) FieldMap {
	out := FieldMap{}
	for _, table := range tables {
		for _, row := range table {
			cells := make([]string, 0, len(row))
			for _, c := range row {
				if c = NormalizeWhitespace(c); c != "" {
					cells = append(cells, c)
				}
			}
			if len(cells) < 2 {
				continue
			}
			label, value := cells[0], cells[1]
			if len(label) < minLabelLen || value == "" {
				continue
			}
			out.Register(NormalizeKey(label), value)
		}
	}
	return out
}

var twoPlusSpaces = regexp.MustCompile(`\s{2,}`)

// LinesKV scans plain text for "label: value" lines, falling back to a
// two-or-more-space split ("label  value") when there is no colon. Splits
// happen before whitespace collapsing so column gaps stay visible.
func LinesKV(text string) FieldMap {
	out := FieldMap{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if len(NormalizeWhitespace(line)) < minLineLen {
			continue
		}

		var label, value string
		if i := strings.Index(line, ":"); i >= 0 {
			label, value = line[:i], line[i+1:]
		} else if parts := twoPlusSpaces.Split(line, 2); len(parts) == 2 {
			label, value = parts[0], parts[1]
		} else {
			continue
		}

		label = NormalizeWhitespace(label)
		value = NormalizeWhitespace(value)
		if len(label) < minLabelLen || value == "" {
			continue
		}
		out.Register(NormalizeKey(label), value)
	}
	return out
}
