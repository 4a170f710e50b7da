package extract

// Table is one extracted table: ordered rows of cell strings, in document
// order. Cells the decoder could not read are empty strings, never missing.
type Table [][]string

// RawDocument is the decoded input to the engine: the concatenated page text
// (newline-joined, document order) and every table found on any page.
// Built once per extraction call and never mutated.
type RawDocument struct {
	Text   string
	Tables []Table
}
