package quizgen

import "github.com/pdfquiz/pdfquiz/internal/llm"

// QuestionSetSchema describes the object the model must return. It is
// checked locally in strict mode; the request itself only asks for JSON.
var QuestionSetSchema = &llm.Schema{
	Name:        "question-set",
	Description: "Ten exam questions generated from a document: 8 multiple choice, 2 short answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": QuestionCount,
				"maxItems": QuestionCount,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{
							"type": "string",
							"enum": []any{string(KindMultipleChoice), string(KindShortAnswer)},
						},
						"question": map[string]any{
							"type":        "string",
							"description": "The question text, in Korean",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"maxItems":    OptionCount,
							"description": "Four options (A-D) for multiple choice; empty for short answer",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "A letter A-D for multiple choice, the expected text for short answer",
						},
						"explanation": map[string]any{
							"type": "string",
						},
					},
					"required": []any{"type", "question", "options", "answer", "explanation"},
				},
			},
		},
		"required": []any{"questions"},
	},
}
