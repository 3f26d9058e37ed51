package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Response schemas for the endpoints whose payloads feed quiz sessions
// and scores. They check shape only; defaults are filled in by the
// normalize functions afterwards.
var (
	quizSchema = map[string]any{
		"type":     "object",
		"required": []any{"title"},
		"properties": map[string]any{
			"title":        map[string]any{"type": "string"},
			"passingScore": map[string]any{"type": []any{"number", "null"}},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"options", "correctOptionIndex"},
					"properties": map[string]any{
						"questionText":       map[string]any{"type": "string"},
						"options":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"correctOptionIndex": map[string]any{"type": "integer", "minimum": 0},
						"points":             map[string]any{"type": []any{"number", "null"}},
					},
				},
			},
		},
	}

	quizListSchema = map[string]any{
		"type":     "object",
		"required": []any{"data"},
		"properties": map[string]any{
			"data": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"quizzes": map[string]any{"type": []any{"array", "null"}, "items": quizSchema},
				},
			},
		},
	}

	quizOneSchema = map[string]any{
		"type":     "object",
		"required": []any{"data"},
		"properties": map[string]any{
			"data": map[string]any{
				"type":       "object",
				"required":   []any{"quiz"},
				"properties": map[string]any{"quiz": quizSchema},
			},
		},
	}

	submitSchema = map[string]any{
		"type":     "object",
		"required": []any{"data"},
		"properties": map[string]any{
			"data": map[string]any{
				"type":     "object",
				"required": []any{"result"},
				"properties": map[string]any{
					"result": map[string]any{
						"type":     "object",
						"required": []any{"score", "percentage"},
						"properties": map[string]any{
							"score":      map[string]any{"type": "number"},
							"percentage": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
							"passed":     map[string]any{"type": "boolean"},
						},
					},
				},
			},
		},
	}

	authSchema = map[string]any{
		"type":     "object",
		"required": []any{"token", "data"},
		"properties": map[string]any{
			"token": map[string]any{"type": "string", "minLength": 1},
			"data": map[string]any{
				"type":       "object",
				"required":   []any{"user"},
				"properties": map[string]any{"user": map[string]any{"type": "object"}},
			},
		},
	}
)

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw JSON against the named schema definition.
func validateBody(name string, def map[string]any, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(name, def)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// Round-trip through JSON so the compiler sees plain decoded values
	// (float64 numbers instead of Go ints).
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
