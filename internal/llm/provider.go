package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction every model backend implements.
// Callers hand it a Request and get back the model's JSON output.
type Provider interface {
	// Generate sends one prompt to the model and returns its output.
	// When req.JSONMode is set the provider restricts the model to a single
	// JSON object using its native mechanism; when req.Schema is set the
	// output is also validated against that schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes a single model call.
type Request struct {
	// System is the optional system prompt.
	System string

	// Messages is the conversation. Quiz generation sends one user message
	// holding the full instruction and document text.
	Messages []Message

	// JSONMode asks the provider for a bare JSON object response without
	// enforcing any particular schema.
	JSONMode bool

	// Schema, when set, is enforced with the provider's structured output
	// support and validated locally.
	Schema *Schema

	// MaxTokens caps the output length.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0.
	Temperature float64
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document.
type Schema struct {
	// Name identifies the schema, kebab-case, e.g. "question-set".
	// It doubles as the compiled-schema cache key.
	Name string

	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the raw text the model produced. In JSON mode this is
	// expected, but not guaranteed, to be a JSON object.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
