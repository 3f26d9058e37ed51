package api

import (
	"context"
	"net/http"
	"strings"
)

// QuizDraft is a new quiz as an instructor writes it. Field names match
// the server's create payload.
type QuizDraft struct {
	Lesson       string          `json:"lesson" validate:"required"`
	Title        string          `json:"title" validate:"required"`
	PassingScore int             `json:"passingScore" validate:"gte=0,lte=100"`
	IsActive     bool            `json:"isActive"`
	Questions    []QuestionDraft `json:"questions" validate:"min=1,dive"`
}

// QuestionDraft is one question of a QuizDraft.
type QuestionDraft struct {
	QuestionText       string   `json:"questionText" validate:"required"`
	Options            []string `json:"options" validate:"min=2,dive,required"`
	CorrectOptionIndex int      `json:"correctOptionIndex" validate:"gte=0"`
	Points             int      `json:"points" validate:"gte=1"`
}

// CreateQuiz publishes a draft and returns the stored quiz. Instructor or
// admin only.
func (c *Client) CreateQuiz(ctx context.Context, draft QuizDraft) (Quiz, error) {
	var env quizEnvelope
	if err := c.call(ctx, http.MethodPost, "/quizzes", draft, "quiz-one", quizOneSchema, &env); err != nil {
		return Quiz{}, err
	}
	return normalizeQuiz(env.Data.Quiz), nil
}

// Normalize trims text fields and drops blank options.
func (d *QuizDraft) Normalize() {
	d.Lesson = strings.TrimSpace(d.Lesson)
	d.Title = strings.TrimSpace(d.Title)
	for i := range d.Questions {
		q := &d.Questions[i]
		q.QuestionText = strings.TrimSpace(q.QuestionText)
		opts := q.Options[:0]
		for _, o := range q.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		q.Options = opts
		if q.Points == 0 {
			q.Points = 1
		}
	}
}
