// Package outputtest validates command JSON output against the published
// schema contract.
package outputtest

import (
	_ "embed"
	"encoding/json"
	"testing"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed json-schemas.json
var contract []byte

// Schema compiles the named schema from the contract.
func Schema(t *testing.T, name string) *gojsonschema.Schema {
	t.Helper()

	var doc map[string]any
	if err := json.Unmarshal(contract, &doc); err != nil {
		t.Fatalf("Failed to parse schema contract: %v", err)
	}

	schemas, ok := doc["schemas"].(map[string]any)
	if !ok {
		t.Fatalf("Invalid schema contract: missing 'schemas' object")
	}
	schema, ok := schemas[name].(map[string]any)
	if !ok {
		t.Fatalf("Schema %q not found in contract", name)
	}

	// Definitions travel with each schema for $ref resolution.
	if defs, ok := doc["definitions"].(map[string]any); ok {
		schema["definitions"] = defs
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		t.Fatalf("Failed to compile schema %q: %v", name, err)
	}
	return compiled
}

// Validate fails t unless document satisfies the named schema.
func Validate(t *testing.T, name, document string) {
	t.Helper()

	result, err := Schema(t, name).Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		t.Fatalf("Validation error: %v", err)
	}
	if !result.Valid() {
		t.Errorf("JSON does not match schema %q:", name)
		for _, desc := range result.Errors() {
			t.Errorf("  - %s", desc)
		}
	}
}

// Valid reports whether document satisfies the named schema.
func Valid(t *testing.T, name, document string) bool {
	t.Helper()

	result, err := Schema(t, name).Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		t.Fatalf("Validation error: %v", err)
	}
	return result.Valid()
}
