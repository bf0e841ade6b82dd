package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const reviewSchema = `{
  "type": "object",
  "required": ["members"],
  "properties": {
    "members": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["last", "sheets"],
        "properties": {
          "rate":  {"type": "string"},
          "last":  {"type": "string"},
          "first": {"type": "string"},
          "sheets": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["source_file", "rows", "invalid_events"],
              "properties": {
                "source_file":      {"type": "string"},
                "source_hash":     {"type": "string"},
                "reporting_period": {
                  "type": "object",
                  "properties": {
                    "from": {"type": "string"},
                    "to":   {"type": "string"}
                  }
                },
                "processed_at":     {"type": "string"},
                "ocr_method":       {"type": "string"},
                "rows":           {"type": "array", "items": {"$ref": "#/$defs/event"}},
                "invalid_events": {"type": "array", "items": {"$ref": "#/$defs/event"}}
              }
            }
          }
        }
      }
    }
  },
  "$defs": {
    "event": {
      "type": "object",
      "required": ["date", "raw", "classification"],
      "properties": {
        "date":             {"type": "string", "pattern": "^[0-9]{2}/[0-9]{2}/[0-9]{4}$"},
        "ship":             {"type": "string"},
        "event_code":       {"type": "string"},
        "raw":              {"type": "string"},
        "occurrence_index": {"type": "integer", "minimum": 0},
        "event_index":      {"type": "integer"},
        "classification": {
          "type": "object",
          "required": ["is_valid", "source"],
          "properties": {
            "is_valid": {"type": "boolean"},
            "reason":   {"type": "string"},
            "category": {"type": "string"},
            "source":   {"type": "string"}
          }
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("review.json", strings.NewReader(reviewSchema)); err != nil {
			schemaErr = fmt.Errorf("add review schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("review.json")
	})
	return schema, schemaErr
}

// validateDocument checks raw ledger JSON against the review schema before
// unmarshaling, so a hand-edited file fails loudly instead of silently
// dropping fields.
func validateDocument(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parse review document: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("review document does not match schema: %w", err)
	}
	return nil
}
