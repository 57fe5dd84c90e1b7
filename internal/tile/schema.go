package tile

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed tile_schema.json
var tileSchemaJSON string

var (
	compileOnce sync.Once
	tileSchema  *jsonschema.Schema
	compileErr  error
)

// Schema returns the compiled JSON Schema for planner LLM output: either
// a single tile object or a {"tiles": [...]} envelope capped at 3.
func Schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("tile_schema.json", strings.NewReader(tileSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, err := compiler.Compile("tile_schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile tile schema: %w", err)
			return
		}
		tileSchema = schema
	})
	return tileSchema, compileErr
}

// ValidateDocument validates raw JSON bytes against the tile schema.
func ValidateDocument(data []byte) error {
	schema, err := Schema()
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("plan is not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("plan does not match schema: %w", err)
	}
	return nil
}
