package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const tableSchemaURL = "fieldspecs.schema.json"

// tableSchema describes the shape of fieldspecs.yaml. Semantic checks such as
// regex compilation and bound ordering happen afterwards in compileTable.
const tableSchema = `{
  "type": "object",
  "required": ["version", "fields"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "fields": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/field"}},
    "profiles": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "minItems": 1,
        "items": {"$ref": "#/$defs/fieldId"}
      }
    }
  },
  "$defs": {
    "fieldId": {"type": "string", "pattern": "^[a-z][a-z0-9_]*$"},
    "decimal": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]+)?$"},
    "rule": {
      "type": "object",
      "required": ["name", "pattern"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "pattern": {"type": "string", "minLength": 1},
        "group": {"type": "integer", "minimum": 0}
      }
    },
    "field": {
      "type": "object",
      "required": ["id", "domain", "rules"],
      "additionalProperties": false,
      "properties": {
        "id": {"$ref": "#/$defs/fieldId"},
        "description": {"type": "string"},
        "domain": {"enum": ["currency", "quantity", "identifier", "text"]},
        "min": {"$ref": "#/$defs/decimal"},
        "max": {"$ref": "#/$defs/decimal"},
        "min_exclusive": {"type": "boolean"},
        "fraction": {"type": "boolean"},
        "require_digit": {"type": "boolean"},
        "max_words": {"type": "integer", "minimum": 1},
        "stop_words": {"type": "array", "items": {"type": "string", "minLength": 1}},
        "rules": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/rule"}}
      }
    }
  }
}`

// validateTableSchema checks raw YAML against tableSchema.
func validateTableSchema(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(tableSchemaURL, bytes.NewReader([]byte(tableSchema))); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(tableSchemaURL)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	asJSON, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}
	var doc any
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return fmt.Errorf("decode table: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("table does not match schema: %w", err)
	}
	return nil
}
