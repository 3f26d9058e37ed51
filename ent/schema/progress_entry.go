package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// ProgressEntry is one key/value pair of the progress store. Values are
// JSON-encoded progress records or session data.
type ProgressEntry struct {
	ent.Schema
}

func (ProgressEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("entry_key").
			NotEmpty().
			Unique().
			Immutable(),
		field.Text("value"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
