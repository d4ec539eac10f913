package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// SessionSnapshot captures a whole quiz session so the terminal client can
// resume it after exit.
type SessionSnapshot struct {
	ent.Schema
}

func (SessionSnapshot) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionSnapshot) Fields() []ent.Field {
	return []ent.Field{
		field.Text("data").
			Comment("Session state as JSON"),
	}
}
