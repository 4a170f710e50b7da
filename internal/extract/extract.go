// Package extract turns decoded datasheet text and tables into a flat,
// schema-less record of named fields plus per-power-bin variant rows.
//
// The engine never loses information: anything it cannot confidently parse
// into a dedicated field survives as a generic key/value pair, and the raw
// text plus a lossless serialization of every table always travel with the
// record. Missing values are empty strings, never nulls, so the record can
// be poured straight into a store that treats every key as a TEXT column.
//
// Everything in this package is pure: no I/O, no shared state, identical
// output for identical input.
package extract

import "encoding/json"

// methodBase identifies this heuristic pipeline generation so reprocessing
// decisions can tell records from different engine versions apart.
const methodBase = "generic_kv+variants_v1"

// Reserved keys the engine owns in the flattened record.
const (
	FieldRawText       = "raw_text"
	FieldRawTablesJSON = "raw_tables_json"
	FieldMethod        = "extraction_method"
	FieldVariants      = "variants"
)

// Record is the engine output: every discovered field, the variant rows, and
// the loss-free raw content. Constructed once per document; ownership passes
// entirely to the caller.
type Record struct {
	Fields        FieldMap
	Variants      []Variant
	RawText       string
	RawTablesJSON string
	Method        string
}

// Parse converts a decoded datasheet into a Record.
//
// Merge policy: generic table pairs first, generic line pairs fill the gaps,
// and canonical fields override both whenever their pattern matched. Every
// canonical key is present afterwards even when empty. Variants come from
// the metric-line parser, falling back to the numeric-block parser.
func Parse(doc RawDocument) Record {
	fields := TablesKV(doc.Tables)
	for k, v := range LinesKV(doc.Text) {
		fields.Register(k, v)
	}

	for k, v := range CanonicalFields(doc.Text) {
		if v != "" {
			fields[k] = v
		} else {
			fields.Ensure(k)
		}
	}

	variants, parser := ParseVariants(doc.Text)

	tables := doc.Tables
	if tables == nil {
		tables = []Table{}
	}
	rawTables, err := json.Marshal(tables)
	if err != nil {
		rawTables = []byte("[]")
	}

	return normalize(Record{
		Fields:        fields,
		Variants:      variants,
		RawText:       doc.Text,
		RawTablesJSON: string(rawTables),
		Method:        methodBase + ":" + parser,
	})
}

// normalize enforces the no-null contract on an assembled record: the field
// map exists, every canonical key is present, and the variant list is a
// slice, never nil.
func normalize(rec Record) Record {
	if rec.Fields == nil {
		rec.Fields = FieldMap{}
	}
	for _, k := range CanonicalKeys() {
		rec.Fields.Ensure(k)
	}
	if rec.Variants == nil {
		rec.Variants = []Variant{}
	}
	return rec
}

// Flatten renders the record as one flat JSON-ready map: every field at top
// level plus the reserved variants/raw/method keys. This is the exact shape
// the dynamic-schema store consumes.
func (r Record) Flatten() map[string]any {
	out := make(map[string]any, len(r.Fields)+4)
	for k, v := range r.Fields {
		out[k] = v
	}
	vs := make([]map[string]string, len(r.Variants))
	for i, v := range r.Variants {
		vs[i] = v.Map()
	}
	out[FieldVariants] = vs
	out[FieldRawText] = r.RawText
	out[FieldRawTablesJSON] = r.RawTablesJSON
	out[FieldMethod] = r.Method
	return out
}
