package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 10,
				"maxItems": 10,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type":     map[string]any{"type": "string", "enum": []any{"MULTIPLE_CHOICE", "SHORT_ANSWER"}},
						"question": map[string]any{"type": "string"},
					},
					"required": []string{"type", "question"},
				},
			},
		},
		"required": []any{"questions"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	questions := schema.Properties["questions"]
	if questions == nil || questions.Type != genai.TypeArray {
		t.Fatalf("expected ARRAY questions, got %+v", questions)
	}
	if questions.MinItems == nil || *questions.MinItems != 10 {
		t.Fatalf("expected minItems 10, got %v", questions.MinItems)
	}
	item := questions.Items
	if item == nil || len(item.Required) != 2 {
		t.Fatalf("expected item with 2 required fields, got %+v", item)
	}
	if len(item.Properties["type"].Enum) != 2 {
		t.Fatalf("expected 2 enum values, got %v", item.Properties["type"].Enum)
	}
	if len(schema.Required) != 1 {
		t.Fatalf("expected 1 required field, got %d", len(schema.Required))
	}
}
