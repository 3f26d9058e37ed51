// Package quiz implements the quiz session state machine: opening a quiz,
// recording answers, scoring a submission and projecting feedback.
package quiz

import (
	"errors"
	"fmt"
)

// Unanswered is the answer value for a question the learner skipped. It
// never equals a valid option index.
const Unanswered = -1

// DefaultPassingScore is used when a quiz does not define one.
const DefaultPassingScore = 70

// Question is a single multiple-choice question.
type Question struct {
	Text         string
	Options      []string
	CorrectIndex int
	Points       int // 0 means the default weight of 1
}

// Weight returns the question's point value.
func (q Question) Weight() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// Validate checks that the correct option index points at an option.
func (q Question) Validate() error {
	if len(q.Options) == 0 {
		return fmt.Errorf("question %q has no options", q.Text)
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("question %q: correct index %d out of range [0,%d)",
			q.Text, q.CorrectIndex, len(q.Options))
	}
	return nil
}

// Quiz is an ordered set of questions.
type Quiz struct {
	// ID is the server id for remote quizzes; empty for catalog quizzes.
	ID string

	// Key is the progress key, "{courseId}:{index}" for catalog quizzes
	// and the server id otherwise.
	Key string

	CourseID     string
	Index        int
	Title        string
	LessonTitle  string
	PassingScore int
	Questions    []Question
}

// Passing returns the effective passing percentage.
func (q Quiz) Passing() int {
	if q.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return q.PassingScore
}

// Validate checks every question in the quiz.
func (q Quiz) Validate() error {
	if q.Key == "" {
		return errors.New("quiz has no progress key")
	}
	var errs []error
	for i, question := range q.Questions {
		if err := question.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("question %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
