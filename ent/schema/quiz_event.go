package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QuizEvent records a quiz lifecycle step: generated, failed, graded or
// reset.
type QuizEvent struct {
	ent.Schema
}

func (QuizEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (QuizEvent) Fields() []ent.Field {
	return []ent.Field{
		field.Enum("action").
			Values("generated", "failed", "graded", "reset"),
		field.String("source_name").
			Default("").
			Comment("File name of the uploaded PDF"),
		field.Int("page_count").
			Default(0),
		field.Int("question_count").
			Default(0),
		field.Int("score").
			Default(0),
		field.String("error_message").
			Default(""),
	}
}

func (QuizEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
	}
}
