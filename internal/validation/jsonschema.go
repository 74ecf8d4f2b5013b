package validation

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rendis/langcanvas/pkg/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const documentSchemaURL = "https://langcanvas.dev/schemas/workflow.json"

// documentSchemaJSON is the JSON Schema for exported workflow documents.
// Embedded as a constant to avoid filesystem dependencies.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://langcanvas.dev/schemas/workflow.json",
  "type": "object",
  "required": ["version", "nodes", "edges"],
  "properties": {
    "version": {
      "type": "string",
      "pattern": "^[0-9]+\\.[0-9]+\\.[0-9]+$"
    },
    "name": { "type": "string" },
    "entryPoint": { "type": "string" },
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "edges": {
      "type": "array",
      "items": { "$ref": "#/$defs/edge" }
    },
    "metadata": { "type": "object" }
  },
  "additionalProperties": false,
  "$defs": {
    "node": {
      "type": "object",
      "required": ["label", "type"],
      "properties": {
        "id": { "type": "string" },
        "label": { "type": "string", "minLength": 1 },
        "type": {
          "type": "string",
          "enum": ["start", "agent", "tool", "function", "conditional", "parallel", "end"]
        },
        "position": {
          "type": "object",
          "required": ["x", "y"],
          "properties": {
            "x": { "type": "number" },
            "y": { "type": "number" }
          },
          "additionalProperties": false
        },
        "function": {
          "type": "object",
          "properties": {
            "name": { "type": "string" },
            "input_schema": { "$ref": "#/$defs/field_types" },
            "output_schema": { "$ref": "#/$defs/field_types" }
          },
          "additionalProperties": false
        },
        "config": { "$ref": "#/$defs/config" },
        "transitions": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["target"],
            "properties": {
              "target": { "type": "string", "minLength": 1 },
              "condition": { "type": "string" },
              "priority": { "type": "integer" }
            },
            "additionalProperties": false
          }
        }
      },
      "additionalProperties": false
    },
    "edge": {
      "type": "object",
      "required": ["source", "target"],
      "properties": {
        "id": { "type": "string" },
        "source": { "type": "string", "minLength": 1 },
        "target": { "type": "string", "minLength": 1 },
        "label": { "type": "string" },
        "value": { "type": "string" },
        "conditional": {
          "type": "object",
          "properties": {
            "function_name": { "type": "string" },
            "priority": { "type": "integer" },
            "is_default": { "type": "boolean" },
            "evaluation_mode": { "type": "string", "enum": ["first-match", "all-matches"] },
            "condition": { "type": "string" }
          },
          "additionalProperties": false
        },
        "loop": {
          "type": "object",
          "required": ["type"],
          "properties": {
            "type": {
              "type": "string",
              "enum": ["conditional", "self-loop", "human-in-loop", "tool-based", "unconditional"]
            },
            "termination_condition": { "type": "string" },
            "max_iterations": { "type": "integer" },
            "human_interrupt": { "type": "boolean" },
            "iteration": { "type": "integer", "minimum": 0 },
            "inferred": { "type": "boolean" }
          },
          "additionalProperties": false
        }
      },
      "additionalProperties": false
    },
    "config": {
      "type": "object",
      "properties": {
        "timeout": { "type": "integer" },
        "retry": {
          "type": "object",
          "properties": {
            "max_attempts": { "type": "integer" },
            "backoff": { "type": "string", "enum": ["none", "linear", "exponential"] },
            "delay_ms": { "type": "integer" }
          },
          "additionalProperties": false
        },
        "concurrency": { "type": "string", "enum": ["sequential", "parallel"] },
        "metadata": { "type": "object" },
        "tags": { "type": "array", "items": { "type": "string" } }
      },
      "additionalProperties": false
    },
    "field_types": {
      "type": "object",
      "additionalProperties": { "type": "string" }
    }
  }
}`

// DocumentValidator checks workflow documents against the workflow JSON Schema
// (Draft 2020-12). The schema is compiled once; it is safe for concurrent use.
type DocumentValidator struct {
	documentSchema *jsonschema.Schema
}

// NewDocumentValidator compiles the workflow document schema.
func NewDocumentValidator() (*DocumentValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal workflow schema: %w", err)
	}
	if err := c.AddResource(documentSchemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("add workflow schema resource: %w", err)
	}

	compiled, err := c.Compile(documentSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile workflow schema: %w", err)
	}

	return &DocumentValidator{documentSchema: compiled}, nil
}

// ValidateDocument validates raw workflow JSON. Violations are returned in the
// error details with their instance locations.
func (v *DocumentValidator) ValidateDocument(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return schema.NewError(schema.ErrCodeImport, "workflow document is empty")
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return schema.NewError(schema.ErrCodeImport, "workflow document is not valid JSON").WithCause(err)
	}

	if err := v.documentSchema.Validate(doc); err != nil {
		return toCanvasError(err)
	}
	return nil
}

// toCanvasError converts a jsonschema.ValidationError into a CanvasError
// listing every leaf violation.
func toCanvasError(err error) *schema.CanvasError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeImport, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeImport, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeImport, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("workflow document has %d schema violations", len(violations))
	return schema.NewError(schema.ErrCodeImport, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error messages
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
