package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Role values returned by the server.
const (
	RoleLearner    = "learner"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User is a normalized account profile.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Image string `json:"image,omitempty"`
}

// Lesson is a normalized server lesson.
type Lesson struct {
	ID       string
	Title    string
	Category string
	Content  string
	Images   []string
}

// RefKind distinguishes the shapes a lesson reference arrives in.
type RefKind int

const (
	RefNone      RefKind = iota // null or missing
	RefID                       // bare id string
	RefPopulated                // embedded lesson object
)

// LessonRef is the lesson a quiz belongs to. The server sends either the
// lesson id or the populated lesson document. Attempt payloads use the
// same two shapes for their quiz and user references.
type LessonRef struct {
	Kind  RefKind
	ID    string
	Title string
}

func (r *LessonRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*r = LessonRef{}
	case b[0] == '"':
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = LessonRef{Kind: RefID, ID: id}
	case b[0] == '{':
		var doc struct {
			MongoID string `json:"_id"`
			ID      string `json:"id"`
			Title   string `json:"title"`
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return err
		}
		*r = LessonRef{Kind: RefPopulated, ID: firstNonEmpty(doc.MongoID, doc.ID), Title: doc.Title}
	default:
		return fmt.Errorf("lesson reference: unexpected JSON %s", b)
	}
	return nil
}

// DisplayTitle returns the lesson title, or "Lesson" when only the id is
// known.
func (r LessonRef) DisplayTitle() string {
	if r.Kind == RefPopulated && r.Title != "" {
		return r.Title
	}
	return "Lesson"
}

// Quiz is a normalized server quiz. Questions are already in the shape a
// quiz session consumes.
type Quiz struct {
	ID           string
	Title        string
	Lesson       LessonRef
	PassingScore int
	IsActive     bool
	Questions    []QuizQuestion
}

// QuizQuestion is a normalized server question.
type QuizQuestion struct {
	Text         string
	Options      []string
	CorrectIndex int
	Points       int
}

// Attempt is a normalized quiz attempt record.
type Attempt struct {
	ID          string
	QuizID      string
	QuizTitle   string
	UserID      string
	Score       int
	Percentage  int
	Passed      bool
	SubmittedAt time.Time
}

// LearnerStats is the learner dashboard payload.
type LearnerStats struct {
	TotalLessons      int     `json:"totalLessons"`
	CompletedLessons  int     `json:"completedLessons"`
	QuizzesPassed     int     `json:"quizzesPassed"`
	TotalQuizAttempts int     `json:"totalQuizAttempts"`
	SuccessRate       float64 `json:"successRate"`
}

// QuizAnalytics is one row of the per-quiz analytics report.
type QuizAnalytics struct {
	QuizID            string
	Title             string
	Attempts          int
	AveragePercentage int
	PassRate          int
}

// Raw wire shapes. Fields the server may omit are pointers or defaulted in
// the normalize step.

type wireUser struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Image   string `json:"image"`
}

type wireLesson struct {
	MongoID  string   `json:"_id"`
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Content  string   `json:"content"`
	Images   []string `json:"images"`
}

type wireQuestion struct {
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	Points             *float64 `json:"points"`
}

type wireQuiz struct {
	MongoID      string         `json:"_id"`
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Lesson       LessonRef      `json:"lesson"`
	PassingScore *float64       `json:"passingScore"`
	IsActive     *bool          `json:"isActive"`
	Questions    []wireQuestion `json:"questions"`
}

type wireAttempt struct {
	MongoID     string    `json:"_id"`
	ID          string    `json:"id"`
	Quiz        LessonRef `json:"quiz"`
	User        LessonRef `json:"user"`
	Score       float64   `json:"score"`
	Percentage  float64   `json:"percentage"`
	Passed      bool      `json:"passed"`
	SubmittedAt string    `json:"submittedAt"`
}

type wireAnalytics struct {
	QuizID            string    `json:"quizId"`
	Quiz              LessonRef `json:"quiz"`
	Title             string    `json:"title"`
	Attempts          float64   `json:"attempts"`
	TotalAttempts     float64   `json:"totalAttempts"`
	AveragePercentage float64   `json:"averagePercentage"`
	AverageScore      float64   `json:"averageScore"`
	PassRate          float64   `json:"passRate"`
}

type wireResult struct {
	Score      float64 `json:"score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}
