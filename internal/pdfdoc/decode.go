// Package pdfdoc decodes PDF bytes into the engine's RawDocument: per-page
// plain text plus zero or more tables of string cells. A page that fails to
// decode contributes nothing; only a document that cannot be opened at all
// is an error.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/brahma-hq/datasheet-tracker/internal/extract"
)

// Decode turns raw PDF bytes into a RawDocument.
func Decode(data []byte) (extract.RawDocument, error) {
	if len(data) == 0 {
		return extract.RawDocument{}, errors.New("empty document")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return extract.RawDocument{}, fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	tables := []extract.Table{}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines, pageTabs, err := decodePage(page)
		if err != nil {
			// tolerated: the page contributes no text and no tables
			continue
		}
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		tables = append(tables, pageTabs...)
	}
	return extract.RawDocument{Text: b.String(), Tables: tables}, nil
}

// decodePage extracts the row-ordered text lines and table candidates of one
// page. The pdf library panics on some malformed content streams; that is
// converted into a per-page error here.
func decodePage(p pdf.Page) (lines []string, tables []extract.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines, tables = nil, nil
			err = fmt.Errorf("page decode: %v", r)
		}
	}()

	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, nil, err
	}
	// top of the page first
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	cellRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		gs := make([]glyph, 0, len(row.Content))
		for _, t := range row.Content {
			gs = append(gs, glyph{X: t.X, W: t.W, FontSize: t.FontSize, S: t.S})
		}
		sort.Slice(gs, func(i, j int) bool { return gs[i].X < gs[j].X })

		cells := rowCells(gs)
		if len(cells) == 0 {
			continue
		}
		lines = append(lines, renderLine(cells))
		cellRows = append(cellRows, cells)
	}
	return lines, pageTables(cellRows), nil
}
