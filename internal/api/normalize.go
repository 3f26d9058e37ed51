package api

import (
	"math"
	"strings"
	"time"

	"github.com/abhisek/edulearn/internal/quiz"
)

// Each normalize function is applied once, where a payload enters the
// client. Nothing past this file sees missing ids, null arrays or
// fractional percentages.

func normalizeUser(w wireUser) User {
	role := strings.ToLower(strings.TrimSpace(w.Role))
	switch role {
	case RoleLearner, RoleInstructor, RoleAdmin:
	default:
		role = RoleLearner
	}
	return User{
		ID:    firstNonEmpty(w.MongoID, w.ID),
		Name:  strings.TrimSpace(w.Name),
		Email: strings.ToLower(strings.TrimSpace(w.Email)),
		Role:  role,
		Image: w.Image,
	}
}

func normalizeLesson(w wireLesson) Lesson {
	l := Lesson{
		ID:       firstNonEmpty(w.MongoID, w.ID),
		Title:    w.Title,
		Category: strings.TrimSpace(w.Category),
		Content:  w.Content,
		Images:   w.Images,
	}
	if l.Title == "" {
		l.Title = "Lesson"
	}
	if l.Category == "" {
		l.Category = "General"
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	return l
}

func normalizeQuiz(w wireQuiz) Quiz {
	q := Quiz{
		ID:           firstNonEmpty(w.MongoID, w.ID),
		Title:        w.Title,
		Lesson:       w.Lesson,
		PassingScore: quiz.DefaultPassingScore,
		IsActive:     true,
		Questions:    make([]QuizQuestion, 0, len(w.Questions)),
	}
	if w.PassingScore != nil {
		q.PassingScore = clampPercent(roundHalfUp(*w.PassingScore))
	}
	if w.IsActive != nil {
		q.IsActive = *w.IsActive
	}
	for _, wq := range w.Questions {
		points := 1
		if wq.Points != nil && *wq.Points > 0 {
			points = roundHalfUp(*wq.Points)
		}
		opts := wq.Options
		if opts == nil {
			opts = []string{}
		}
		q.Questions = append(q.Questions, QuizQuestion{
			Text:         wq.QuestionText,
			Options:      opts,
			CorrectIndex: wq.CorrectOptionIndex,
			Points:       points,
		})
	}
	return q
}

func normalizeAttempt(w wireAttempt) Attempt {
	a := Attempt{
		ID:         firstNonEmpty(w.MongoID, w.ID),
		QuizID:     w.Quiz.ID,
		QuizTitle:  w.Quiz.Title,
		UserID:     w.User.ID,
		Score:      roundHalfUp(w.Score),
		Percentage: clampPercent(roundHalfUp(w.Percentage)),
		Passed:     w.Passed,
	}
	if w.SubmittedAt != "" {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
			if t, err := time.Parse(layout, w.SubmittedAt); err == nil {
				a.SubmittedAt = t
				break
			}
		}
	}
	return a
}

func normalizeAnalytics(w wireAnalytics) QuizAnalytics {
	attempts := w.Attempts
	if attempts == 0 {
		attempts = w.TotalAttempts
	}
	avg := w.AveragePercentage
	if avg == 0 {
		avg = w.AverageScore
	}
	title := w.Title
	if title == "" {
		title = w.Quiz.Title
	}
	return QuizAnalytics{
		QuizID:            firstNonEmpty(w.QuizID, w.Quiz.ID),
		Title:             title,
		Attempts:          roundHalfUp(attempts),
		AveragePercentage: clampPercent(roundHalfUp(avg)),
		PassRate:          clampPercent(roundHalfUp(w.PassRate)),
	}
}

// toResult adopts the server's scoring. Only the percentage is rounded,
// half up, to get the integer the progress record stores.
func toResult(w wireResult) quiz.Result {
	return quiz.Result{
		Score:      roundHalfUp(w.Score),
		Percentage: clampPercent(roundHalfUp(w.Percentage)),
		Passed:     w.Passed,
		Mode:       quiz.ModeRemote,
	}
}

// ForSession converts the quiz into the shape a quiz session runs. The
// server id doubles as the progress key.
func (q Quiz) ForSession() quiz.Quiz {
	qs := make([]quiz.Question, len(q.Questions))
	for i, question := range q.Questions {
		qs[i] = quiz.Question{
			Text:         question.Text,
			Options:      question.Options,
			CorrectIndex: question.CorrectIndex,
			Points:       question.Points,
		}
	}
	return quiz.Quiz{
		ID:           q.ID,
		Key:          q.ID,
		Title:        q.Title,
		LessonTitle:  q.Lesson.DisplayTitle(),
		PassingScore: q.PassingScore,
		Questions:    qs,
	}
}

func roundHalfUp(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Floor(f + 0.5))
}

func clampPercent(p int) int {
	return max(0, min(100, p))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
