package extract

import "regexp"

// canonicalRule is one well-known datasheet field with dedicated patterns,
// tried in order against the full raw text.
type canonicalRule struct {
	name     string
	patterns []*regexp.Regexp
}

func rule(name string, pats ...string) canonicalRule {
	rs := make([]*regexp.Regexp, len(pats))
	for i, p := range pats {
		rs[i] = regexp.MustCompile(`(?i)` + p)
	}
	return canonicalRule{name: name, patterns: rs}
}

// canonicalRules: electrical ratings first, then mechanical and packaging,
// mirroring how module datasheets lay these out. Values matched here beat
// whatever the generic extractors scraped for the same key.
var canonicalRules = []canonicalRule{
	rule("power_tolerance", `Power\s+Tolerance\s*[:\-]?\s*([^\n]+)`),
	rule("temperature_noct",
		`45\s*±\s*2\s*°C`,
		`NOCT[^\n]*?([0-9]+\s*±\s*[0-9]+\s*°C)`),
	rule("maximum_system_voltage", `Maximum\s+System\s+Voltage\s*[:\-]?\s*([^\n]+)`),
	rule("maximum_series_fuse_rating", `Maximum\s+Series\s+Fuse\s+Rating\s*[:\-]?\s*([^\n]+)`),
	rule("refer_bifacial_factor", `Refer\.?\s*Bifacial\s*Factor\s*[:\-]?\s*([^\n]+)`),
	rule("temperature_coefficient_pmax",
		`Temperature\s+Coefficient\s+of\s+Pmax\s*[:\-]?\s*([^\n]+)`,
		`TEMPERATURE\s*COEFFICIENT\s*[:\-]?\s*([^\n]+)`),
	rule("temperature_coefficient_voc", `Temperature\s+Coefficient\s+of\s+Voc\s*[:\-]?\s*([^\n]+)`),
	rule("temperature_coefficient_isc", `Temperature\s+Coefficient\s+of\s+Isc\s*[:\-]?\s*([^\n]+)`),

	rule("dimensions", `Dimensions\s*[:\-]?\s*([^\n]+)`),
	rule("weight", `Weight\s*[:\-]?\s*([^\n]+)`),
	rule("front_glass", `Front\s+Glass\s*[:\-]?\s*([^\n]+)`),
	rule("back_glass", `Back\s+Glass\s*[:\-]?\s*([^\n]+)`),
	rule("frame", `Frame\s*[:\-]?\s*([^\n]+)`),
	rule("junction_box", `Junction\s+Box\s*[:\-]?\s*([^\n]+)`),
	rule("protection_class", `Protection\s+Class\s*[:\-]?\s*([^\n]+)`),
	rule("iec_fire_type", `IEC\s*Fire\s*Type\s*[:\-]?\s*([^\n]+)`),
	rule("output_cables", `Output\s+Cables\s*[:\-]?\s*([^\n]+)`),
	rule("pallet_dimensions", `Pallet\s+Dimen(?:tions|sions)\s*[:\-]?\s*([^\n]+)`),
	rule("packing_details", `(\d+\s*pcs/pallet[^\n]*)`),
}

// CanonicalFields runs every canonical rule against the raw text. Every rule
// name appears in the result, empty when nothing matched, so downstream
// consumers can rely on the column existing.
func CanonicalFields(text string) FieldMap {
	out := FieldMap{}
	for _, r := range canonicalRules {
		out[NormalizeKey(r.name)] = firstMatch(text, r.patterns)
	}
	return out
}

// CanonicalKeys lists the normalized names of every canonical field.
func CanonicalKeys() []string {
	keys := make([]string, len(canonicalRules))
	for i, r := range canonicalRules {
		keys[i] = NormalizeKey(r.name)
	}
	return keys
}

// firstMatch returns the normalized text of the first pattern that matches:
// the first capture group when the pattern has one, the whole match
// otherwise. No match yields the empty string.
func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return NormalizeWhitespace(m[1])
		}
		return NormalizeWhitespace(m[0])
	}
	return ""
}
