package replace

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// replacementSchema constrains the raw spec shape: slide-id keys map to
// shape-id keys map to paragraph lists, each paragraph requiring text.
// Range and existence checks against the actual deck happen in
// Validate.
const replacementSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "patternProperties": {
    "^slide-[0-9]+$": {
      "type": "object",
      "patternProperties": {
        "^shape-[0-9]+$": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "text": {"type": "string"},
              "alignment": {"type": "string", "enum": ["LEFT", "CENTER", "RIGHT", "JUSTIFY"]},
              "bullet": {"type": "boolean"},
              "level": {"type": "integer", "minimum": 0},
              "space_before": {"type": "number", "minimum": 0},
              "space_after": {"type": "number", "minimum": 0},
              "line_spacing": {"type": "number", "exclusiveMinimum": 0},
              "font_name": {"type": "string"},
              "font_size": {"type": "number", "exclusiveMinimum": 0},
              "bold": {"type": "boolean"},
              "italic": {"type": "boolean"},
              "underline": {"type": "boolean"},
              "color": {"type": "string"}
            },
            "required": ["text"]
          }
        }
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

func validateSpecJSON(raw []byte) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(replacementSchema))
	if err != nil {
		return fmt.Errorf("load replacement schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate replacement spec: %w", err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, issue := range result.Errors() {
		ve.Problems = append(ve.Problems, fmt.Sprintf("%s: %s", issue.Field(), issue.Description()))
	}
	return ve
}
