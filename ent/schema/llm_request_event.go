package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent records every model call with its raw request and
// response for cost tracking and debugging.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("provider").
			Default("").
			Comment("Provider name: openai, anthropic, gemini, openrouter, mock"),
		field.String("model").
			Default("").
			Comment("Actual model ID used"),
		field.String("purpose").
			Default("").
			Comment("Consumer-provided label, e.g. quiz-gen"),
		field.Int("input_tokens").
			Default(0),
		field.Int("output_tokens").
			Default(0),
		field.Int64("latency_ms").
			Default(0).
			Comment("Wall-clock time for the request"),
		field.Bool("success"),
		field.String("error_message").
			Default(""),
		field.Text("request_body").
			Default("").
			Comment("Serialized request as sent to the provider"),
		field.Text("response_body").
			Default("").
			Comment("Raw model output"),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose"),
	}
}
