package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// EventMixin provides the columns shared by every recorded row: the
// global sequence number, the creation time and the owning quiz session.
type EventMixin struct {
	mixin.Schema
}

func (EventMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Immutable().
			Comment("Monotonically increasing global sequence number"),
		field.Int64("created_at").
			Immutable().
			Comment("Unix milliseconds"),
		field.String("session_id").
			Default("").
			Comment("Quiz session the row belongs to; empty for calls made outside a session"),
	}
}

func (EventMixin) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("sequence"),
	}
}
