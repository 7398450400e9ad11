// Package compose builds .pptx files from a declarative JSON
// specification: slide dimensions or a named layout, per-slide
// background color and shapes with text, fill and border formatting.
package compose

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// presentationSchema constrains the incoming spec before any deck
// building starts, so shape errors surface with field paths instead of
// partially written files.
const presentationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "layout": {"type": "string", "enum": ["16:9", "4:3", "widescreen", "standard"]},
    "width": {"type": "number", "exclusiveMinimum": 0},
    "height": {"type": "number", "exclusiveMinimum": 0},
    "title": {"type": "string"},
    "author": {"type": "string"},
    "slides": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "background": {"type": "string"},
          "shapes": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "type": {"type": "string", "enum": ["textbox", "rectangle", "rounded_rectangle", "oval", "image", "line"]},
                "left": {"type": "number"},
                "top": {"type": "number"},
                "width": {"type": "number"},
                "height": {"type": "number"},
                "text": {"type": "string"},
                "path": {"type": "string"},
                "fill": {"type": "string"},
                "border": {
                  "type": "object",
                  "properties": {
                    "color": {"type": "string"},
                    "width": {"type": "number"}
                  }
                },
                "color": {"type": "string"},
                "line_width": {"type": "number"},
                "word_wrap": {"type": "boolean"},
                "valign": {"type": "string", "enum": ["top", "middle", "bottom"]},
                "margin": {},
                "font_name": {"type": "string"},
                "font_size": {"type": "number"},
                "bold": {"type": "boolean"},
                "italic": {"type": "boolean"},
                "alignment": {"type": "string"},
                "paragraphs": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "properties": {
                      "text": {"type": "string"},
                      "alignment": {"type": "string", "enum": ["left", "center", "right", "justify"]},
                      "font_name": {"type": "string"},
                      "font_size": {"type": "number", "exclusiveMinimum": 0},
                      "bold": {"type": "boolean"},
                      "italic": {"type": "boolean"},
                      "underline": {"type": "boolean"},
                      "color": {"type": "string"},
                      "bullet": {"type": "boolean"},
                      "bullet_char": {"type": "string"},
                      "level": {"type": "integer", "minimum": 0},
                      "space_before": {"type": "number", "minimum": 0},
                      "space_after": {"type": "number", "minimum": 0},
                      "line_spacing": {"type": "number", "exclusiveMinimum": 0}
                    },
                    "required": ["text"]
                  }
                }
              }
            }
          }
        }
      }
    }
  },
  "required": ["slides"]
}`

// ValidationError reports schema violations in the incoming spec.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("presentation spec invalid: %s", strings.Join(e.Problems, "; "))
}

var errSchemaLoad = errors.New("load presentation schema")

// validateSpec checks raw spec JSON against the embedded schema.
func validateSpec(raw []byte) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(presentationSchema))
	if err != nil {
		return fmt.Errorf("%w: %v", errSchemaLoad, err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate presentation spec: %w", err)
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
