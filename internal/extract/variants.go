package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Variant is one power-bin row of electrical ratings for a module design.
// All values are strings exactly as printed; unknown means empty, never
// absent. pmax_w identifies the bin within one datasheet.
type Variant struct {
	PmaxW         string `json:"pmax_w"`
	VmpV          string `json:"vmp_v"`
	ImpA          string `json:"imp_a"`
	VocV          string `json:"voc_v"`
	IscA          string `json:"isc_a"`
	EfficiencyPct string `json:"efficiency_pct"`
	NoctPmaxW     string `json:"noct_pmax_w"`
	NoctVmpV      string `json:"noct_vmp_v"`
	NoctImpA      string `json:"noct_imp_a"`
	NoctVocV      string `json:"noct_voc_v"`
	NoctIscA      string `json:"noct_isc_a"`
}

// VariantKeys is the fixed key set of a variant row, in column order.
var VariantKeys = []string{
	"pmax_w", "vmp_v", "imp_a", "voc_v", "isc_a", "efficiency_pct",
	"noct_pmax_w", "noct_vmp_v", "noct_imp_a", "noct_voc_v", "noct_isc_a",
}

// Map renders the variant as a flat string map over the fixed key set.
func (v Variant) Map() map[string]string {
	return map[string]string{
		"pmax_w":         v.PmaxW,
		"vmp_v":          v.VmpV,
		"imp_a":          v.ImpA,
		"voc_v":          v.VocV,
		"isc_a":          v.IscA,
		"efficiency_pct": v.EfficiencyPct,
		"noct_pmax_w":    v.NoctPmaxW,
		"noct_vmp_v":     v.NoctVmpV,
		"noct_imp_a":     v.NoctImpA,
		"noct_voc_v":     v.NoctVocV,
		"noct_isc_a":     v.NoctIscA,
	}
}

// maxBins caps how many power bins a metric line can carry.
const maxBins = 5

var (
	numberToken  = regexp.MustCompile(`\d+\.\d+|\d+`)
	decimalToken = regexp.MustCompile(`\d+\.\d+`)
	threeDigits  = regexp.MustCompile(`\b\d{3}\b`)
)

// metricRow returns exactly want trailing numeric tokens from a line, or nil
// when the line holds fewer (a short row cannot be aligned to power bins).
func metricRow(line string, want int) []string {
	nums := numberToken.FindAllString(line, -1)
	if len(nums) < want {
		return nil
	}
	return nums[len(nums)-want:]
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = NormalizeWhitespace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// noctHeader marks the five-line NOCT block on metric-line sheets:
// Pmax, Vmp, Imp, Voc, Isc rows in that order.
const noctHeader = "Specifications (NOCT)"

// MetricLineVariants parses sheets that print one line per electrical metric
// holding one value per power bin, e.g.
//
//	Maximum Power - Pmax 570 575 580 585 590
//	Maximum Power Voltage - Vmp 43.58 43.72 ...
//
// The Pmax line fixes the bin count; metric lines that cannot supply that
// many values leave their column empty. Returns nil when no Pmax line with
// numbers exists, which triggers the numeric-block fallback.
func MetricLineVariants(text string) []Variant {
	lines := nonEmptyLines(text)
	find := func(substr string) string {
		s := strings.ToLower(substr)
		for _, l := range lines {
			if strings.Contains(strings.ToLower(l), s) {
				return l
			}
		}
		return ""
	}

	pmax := numberToken.FindAllString(find("Maximum Power - Pmax"), -1)
	if len(pmax) > maxBins {
		pmax = pmax[len(pmax)-maxBins:]
	}
	if len(pmax) == 0 {
		return nil
	}
	n := len(pmax)

	vmp := metricRow(find("Maximum Power Voltage - Vmp"), n)
	imp := metricRow(find("Maximum Power Current - Imp"), n)
	voc := metricRow(find("Open-circuit Voltage - Voc"), n)
	isc := metricRow(find("Short-circuit Current - Isc"), n)
	eff := metricRow(find("Module Efficiency STC"), n)

	noct := noctBlock(lines, n)

	at := func(vals []string, i int) string {
		if i < len(vals) {
			return vals[i]
		}
		return ""
	}

	variants := make([]Variant, 0, n)
	for i, p := range pmax {
		variants = append(variants, Variant{
			PmaxW:         p,
			VmpV:          at(vmp, i),
			ImpA:          at(imp, i),
			VocV:          at(voc, i),
			IscA:          at(isc, i),
			EfficiencyPct: at(eff, i),
			NoctPmaxW:     at(noct[0], i),
			NoctVmpV:      at(noct[1], i),
			NoctImpA:      at(noct[2], i),
			NoctVocV:      at(noct[3], i),
			NoctIscA:      at(noct[4], i),
		})
	}
	return variants
}

// noctBlock reads the five rows following the "Specifications (NOCT)" header.
// A missing header or a truncated block leaves the affected rows nil.
func noctBlock(lines []string, want int) [5][]string {
	var out [5][]string
	for i, l := range lines {
		if l != noctHeader {
			continue
		}
		for j := 0; j < 5 && i+1+j < len(lines); j++ {
			out[j] = metricRow(lines[i+1+j], want)
		}
		break
	}
	return out
}

// Plausibility window for STC rows plus the band-selection bounds. These are
// tuned to the wattage classes observed on current utility-scale sheets; a
// new vendor range means revisiting these numbers, not the parser.
const (
	minPlausiblePmaxW = 500
	maxPlausiblePmaxW = 800
	minPlausibleVmpV  = 20
	maxPlausibleVmpV  = 80
	minPlausibleVocV  = 30
	maxPlausibleVocV  = 90
	minPlausibleEff   = 10
	maxPlausibleEff   = 30

	nominalBandLowW  = 600
	nominalBandHighW = 625
	maxBandRows      = 6
)

// numericBlock matches one full "Pmax Vmp Imp Voc Isc Eff" row, e.g.
// "600 39.38 15.25 46.95 15.99 22.24". The leading non-digit guard keeps a
// longer number from donating its last three digits as a wattage.
var numericBlock = regexp.MustCompile(
	`(?:^|[^\d])(\d{3})\s+(\d+\.\d+)\s+(\d+\.\d+)\s+(\d+\.\d+)\s+(\d+\.\d+)\s+(\d+\.\d+)`)

// NumericBlockVariants parses sheets that repeat one numeric row per power
// bin. Rows outside the plausibility window are numeric noise and dropped;
// survivors are deduplicated by wattage (last one wins). Bifacial-gain
// sections repeat the table at boosted wattages, so the nominal band is
// preferred when present, otherwise the lowest rows are kept.
func NumericBlockVariants(text string) []Variant {
	rows := map[string][5]string{}
	for _, m := range numericBlock.FindAllStringSubmatch(text, -1) {
		p := m[1]
		pI, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		vmpF, err1 := strconv.ParseFloat(m[2], 64)
		vocF, err2 := strconv.ParseFloat(m[4], 64)
		effF, err3 := strconv.ParseFloat(m[6], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if pI < minPlausiblePmaxW || pI > maxPlausiblePmaxW ||
			vmpF < minPlausibleVmpV || vmpF > maxPlausibleVmpV ||
			vocF < minPlausibleVocV || vocF > maxPlausibleVocV ||
			effF < minPlausibleEff || effF > maxPlausibleEff {
			continue
		}
		rows[p] = [5]string{m[2], m[3], m[4], m[5], m[6]}
	}
	if len(rows) == 0 {
		return nil
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})

	var band []string
	for _, k := range keys {
		if n, _ := strconv.Atoi(k); n >= nominalBandLowW && n <= nominalBandHighW {
			band = append(band, k)
		}
	}
	if len(band) == 0 {
		band = keys
		if len(band) > maxBandRows {
			band = band[:maxBandRows]
		}
	}

	noct := noctAt800(text)

	variants := make([]Variant, 0, len(band))
	for _, p := range band {
		r := rows[p]
		v := Variant{
			PmaxW:         p,
			VmpV:          r[0],
			ImpA:          r[1],
			VocV:          r[2],
			IscA:          r[3],
			EfficiencyPct: r[4],
		}
		if n, ok := noct[p]; ok {
			v.NoctPmaxW, v.NoctVmpV, v.NoctImpA = n[0], n[1], n[2]
		}
		variants = append(variants, v)
	}
	return variants
}

// noctAt800 reads the "NOCT ... @800W/m²" block: a header line carrying the
// wattages, then one line each of NOCT Pmax, Vmp and Imp values matched to
// the wattages by position. A missing or truncated block contributes nothing.
func noctAt800(text string) map[string][3]string {
	lines := nonEmptyLines(text)
	for i, l := range lines {
		low := strings.ToLower(l)
		if !strings.Contains(low, "noct") || !strings.Contains(low, "@800") {
			continue
		}
		out := map[string][3]string{}
		if i+3 >= len(lines) {
			return out
		}
		powers := threeDigits.FindAllString(l, -1)
		pmax := decimalToken.FindAllString(lines[i+1], -1)
		vmp := decimalToken.FindAllString(lines[i+2], -1)
		imp := decimalToken.FindAllString(lines[i+3], -1)
		for j, pwr := range powers {
			if j >= len(pmax) {
				break
			}
			n := [3]string{pmax[j], "", ""}
			if j < len(vmp) {
				n[1] = vmp[j]
			}
			if j < len(imp) {
				n[2] = imp[j]
			}
			out[pwr] = n
		}
		return out
	}
	return nil
}

// Variant parser tags, recorded in the extraction-method field.
const (
	ParserMetricLines  = "metric_lines"
	ParserNumericBlock = "numeric_block"
	ParserNone         = "none"
)

// ParseVariants tries the metric-line layout first and falls back to the
// repeating numeric block. The returned tag names the parser that produced
// the rows.
func ParseVariants(text string) ([]Variant, string) {
	if vs := MetricLineVariants(text); len(vs) > 0 {
		return vs, ParserMetricLines
	}
	if vs := NumericBlockVariants(text); len(vs) > 0 {
		return vs, ParserNumericBlock
	}
	return nil, ParserNone
}
