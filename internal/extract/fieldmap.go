package extract

// FieldMap maps normalized identifiers to extracted string values. Once a key
// is registered it is never absent; an unknown value is the empty string.
type FieldMap map[string]string

// Register stores value under key with first-non-empty-wins semantics: an
// existing non-empty value is kept, an existing empty value is upgraded when
// a later non-empty one arrives.
func (m FieldMap) Register(key, value string) {
	if old, ok := m[key]; ok {
		if old == "" && value != "" {
			m[key] = value
		}
		return
	}
	m[key] = value
}

// Ensure guarantees key exists, adding an empty value when absent.
func (m FieldMap) Ensure(key string) {
	if _, ok := m[key]; !ok {
		m[key] = ""
	}
}
