package publish

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// masterSchema is the minimum contract a master record must meet before it
// is compiled into a release. Extraction is lossy, so everything beyond the
// module identity stays optional.
var masterSchema = map[string]any{
	"type":     "object",
	"required": []any{"mfr", "model"},
	"properties": map[string]any{
		"mfr":   map[string]any{"type": "string", "minLength": 1},
		"model": map[string]any{"type": "string", "minLength": 1},
		"variants": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
	},
}

var compiledMasterSchema = mustCompile(masterSchema)

func mustCompile(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		panic(err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		panic(err)
	}
	return schema
}

// ValidateMaster checks a decoded master record against the release contract.
func ValidateMaster(doc map[string]any) error {
	var v any
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := compiledMasterSchema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
