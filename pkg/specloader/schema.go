package specloader

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://veridict.schemas.local/specification.schema.json"

// specSchema is the shape every specification document must satisfy before
// any expression is compiled.
const specSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["operation"],
  "additionalProperties": false,
  "properties": {
    "operation": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "pre": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["guard"],
        "additionalProperties": false,
        "properties": {
          "description": {"type": "string"},
          "guard": {"type": "string", "minLength": 1}
        }
      }
    },
    "post": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["guard", "property"],
        "additionalProperties": false,
        "properties": {
          "description": {"type": "string"},
          "guard": {"type": "string", "minLength": 1},
          "property": {"type": "string", "minLength": 1}
        }
      }
    },
    "throws": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["guard", "exceptions"],
        "additionalProperties": false,
        "properties": {
          "description": {"type": "string"},
          "guard": {"type": "string", "minLength": 1},
          "exceptions": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["type"],
              "additionalProperties": false,
              "properties": {
                "type": {"type": "string", "minLength": 1},
                "comment": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(specSchema)); err != nil {
		return nil, fmt.Errorf("specloader: schema load failed: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("specloader: schema compile failed: %w", err)
	}
	return compiled, nil
}
