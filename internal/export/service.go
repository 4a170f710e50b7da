package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/brahma-hq/datasheet-tracker/internal/blob"
)

// Service is a tiny façade over the object store that produces XLSX bytes
// for master data exports.
type Service struct {
	store      blob.Store
	masterRoot string
	logger     *slog.Logger
}

func NewService(store blob.Store, masterRoot string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, masterRoot: masterRoot, logger: logger}
}

// moduleColumns are the per-module columns exported first, in order. Any
// other extracted field lands in the trailing catch-all columns.
var moduleColumns = []string{
	"mfr",
	"model",
	"power_tolerance",
	"temperature_noct",
	"maximum_system_voltage",
	"maximum_series_fuse_rating",
	"temperature_coefficient_pmax",
	"dimensions",
	"weight",
	"frame",
	"junction_box",
	"output_cables",
	"extraction_method",
}

var variantColumns = []string{
	"mfr",
	"model",
	"pmax_w",
	"vmp_v",
	"imp_a",
	"voc_v",
	"isc_a",
	"efficiency_pct",
	"noct_pmax_w",
	"noct_vmp_v",
	"noct_imp_a",
}

// ExportMasterXLSX renders every master record into a two-sheet workbook,
// one row per module plus one row per power variant.
func (s *Service) ExportMasterXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	paths, err := s.store.List(ctx, s.masterRoot+"/")
	if err != nil {
		return nil, fmt.Errorf("list master data: %w", err)
	}

	var records []map[string]any
	for _, p := range paths {
		if !strings.HasSuffix(p, ".json") {
			continue
		}
		var doc map[string]any
		if err := blob.ReadJSON(ctx, s.store, p, &doc); err != nil {
			s.logger.Warn("export.skip_unreadable", "path", p, "error", err)
			continue
		}
		records = append(records, doc)
	}

	f := excelize.NewFile()
	const modulesSheet = "Modules"
	const variantsSheet = "Variants"

	if err := f.SetSheetName("Sheet1", modulesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(variantsSheet); err != nil {
		return nil, err
	}
	if index, err := f.GetSheetIndex(modulesSheet); err == nil {
		f.SetActiveSheet(index)
	}

	setRow := func(sheet string, row int, values []string) {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	setRow(modulesSheet, 1, headerTitles(moduleColumns))
	setRow(variantsSheet, 1, headerTitles(variantColumns))

	sort.Slice(records, func(i, j int) bool {
		return recordKey(records[i]) < recordKey(records[j])
	})

	moduleRow, variantRow := 2, 2
	for _, rec := range records {
		values := make([]string, len(moduleColumns))
		for i, col := range moduleColumns {
			values[i] = cellText(rec[col])
		}
		setRow(modulesSheet, moduleRow, values)
		moduleRow++

		variants, _ := rec["variants"].([]any)
		for _, raw := range variants {
			variant, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			vvalues := make([]string, len(variantColumns))
			for i, col := range variantColumns {
				switch col {
				case "mfr", "model":
					vvalues[i] = cellText(rec[col])
				default:
					vvalues[i] = cellText(variant[col])
				}
			}
			setRow(variantsSheet, variantRow, vvalues)
			variantRow++
		}
	}

	_ = f.SetColWidth(modulesSheet, "A", "B", 22)
	_ = f.SetColWidth(modulesSheet, "C", "M", 26)
	_ = f.SetColWidth(variantsSheet, "A", "B", 22)
	_ = f.SetColWidth(variantsSheet, "C", "K", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"modules", moduleRow-2,
		"variants", variantRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func recordKey(rec map[string]any) string {
	return cellText(rec["mfr"]) + "::" + cellText(rec["model"])
}

var headerCaser = cases.Title(language.English)

func headerTitles(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = headerCaser.String(strings.ReplaceAll(c, "_", " "))
	}
	return out
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
