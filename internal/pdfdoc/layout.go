package pdfdoc

import (
	"strings"

	"github.com/brahma-hq/datasheet-tracker/internal/extract"
)

// glyph is one positioned text chunk from a page content stream.
type glyph struct {
	X, W     float64
	FontSize float64
	S        string
}

const defaultFontSize = 10

// gapThresholds returns the horizontal gap sizes that count as a word break
// and as a column boundary, scaled to the glyph size.
func gapThresholds(fontSize float64) (word, cell float64) {
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	return fontSize * 0.25, fontSize * 2
}

// rowCells joins the glyph runs of one visual row into cells. Small gaps are
// word breaks within a cell, large gaps start a new cell. Glyphs must be
// sorted by X.
func rowCells(gs []glyph) []string {
	var cells []string
	var cur strings.Builder
	var end float64

	flush := func() {
		if c := extract.NormalizeWhitespace(cur.String()); c != "" {
			cells = append(cells, c)
		}
		cur.Reset()
	}

	for i, g := range gs {
		if i > 0 {
			word, cell := gapThresholds(gs[i-1].FontSize)
			switch gap := g.X - end; {
			case gap > cell:
				flush()
			case gap > word:
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(g.S)
		if e := g.X + g.W; e > end {
			end = e
		}
	}
	flush()
	return cells
}

// renderLine renders row cells as a layout-preserving text line: column gaps
// become double spaces so the line-based key/value splitter can see them.
func renderLine(cells []string) string {
	return strings.Join(cells, "  ")
}

// pageTables groups consecutive multi-cell rows into tables. A lone
// double-gapped row reads fine as a text line, so only runs of two or more
// rows count.
func pageTables(rows [][]string) []extract.Table {
	var tables []extract.Table
	var run extract.Table

	flush := func() {
		if len(run) >= 2 {
			tables = append(tables, run)
		}
		run = nil
	}

	for _, cells := range rows {
		if len(cells) >= 2 {
			run = append(run, cells)
		} else {
			flush()
		}
	}
	flush()
	return tables
}
