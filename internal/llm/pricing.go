package llm

import "strings"

// ModelCost is USD per one million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the pricing for a model id, or nil if unknown.
// Dated snapshots ("gpt-4o-2024-08-06") and OpenRouter ids
// ("openai/gpt-4o") fall back to their base model.
func LookupCost(modelID string) *ModelCost {
	id := modelID
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	if c, ok := modelCosts[id]; ok {
		return &c
	}
	for base, c := range modelCosts {
		if strings.HasPrefix(id, base+"-20") {
			return &c
		}
	}
	return nil
}

// Prices as published by the vendors, 2026-02.
var modelCosts = map[string]ModelCost{
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},

	"claude-sonnet-4-5": {3, 15},
	"claude-haiku-4-5":  {1, 5},
	"claude-opus-4-5":   {5, 25},

	"gemini-2.0-flash": {0.1, 0.4},
	"gemini-2.5-flash": {0.3, 2.5},
	"gemini-2.5-pro":   {1.25, 10},
}
