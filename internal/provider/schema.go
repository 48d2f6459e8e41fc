package provider

// payloadSchema names a JSON Schema a provider response body must
// conform to before it is decoded.
type payloadSchema struct {
	Name       string
	Definition map[string]any
}

// questionProperties is the schema fragment shared by question-set and
// test payloads.
var questionProperties = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":          map[string]any{"type": "string", "minLength": 1},
		"category_id": map[string]any{"type": "string"},
		"text":        map[string]any{"type": "string", "minLength": 1},
		"choices": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []any{"id", "text"},
}

// questionSetSchema validates the active-question-set response.
var questionSetSchema = &payloadSchema{
	Name: "question-set",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":        map[string]any{"type": "string", "minLength": 1},
			"name":      map[string]any{"type": "string"},
			"slug":      map[string]any{"type": "string"},
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    questionProperties,
			},
		},
		"required": []any{"id", "questions"},
	},
}

// testSchema validates create-test and get-test responses.
var testSchema = &payloadSchema{
	Name: "test",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":              map[string]any{"type": "string", "minLength": 1},
			"question_set_id": map[string]any{"type": "string"},
			"status":          map[string]any{"type": "string", "minLength": 1},
			"expires_at":      map[string]any{"type": "string"},
			"time_limit":      map[string]any{"type": "integer", "minimum": 0},
			"questions": map[string]any{
				"type":  "array",
				"items": questionProperties,
			},
		},
		"required": []any{"id", "status"},
	},
}
