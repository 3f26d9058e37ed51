package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QuizAttempt records one submitted quiz. The progress record keeps only
// the latest score; this table keeps every attempt.
type QuizAttempt struct {
	ent.Schema
}

func (QuizAttempt) Mixin() []ent.Mixin {
	return []ent.Mixin{SequenceMixin{}}
}

func (QuizAttempt) Fields() []ent.Field {
	return []ent.Field{
		field.String("attempt_id").
			NotEmpty().
			Immutable().
			Comment("UUID assigned when the attempt is recorded"),
		field.String("quiz_key").
			NotEmpty().
			Comment("{courseId}:{index} for catalog quizzes, the server id otherwise"),
		field.String("quiz_title").
			Default(""),
		field.String("user_id").
			Default("").
			Comment("Empty for guests"),
		field.Int("score").
			Comment("Points earned"),
		field.Int("percentage").
			Range(0, 100),
		field.Bool("passed"),
		field.String("mode").
			NotEmpty().
			Comment("local or remote"),
		field.Time("submitted_at").
			Default(time.Now).
			Immutable(),
	}
}

func (QuizAttempt) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("quiz_key"),
	}
}
