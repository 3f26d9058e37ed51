// Package summary aggregates progress records into dashboard figures.
package summary

import (
	"github.com/abhisek/edulearn/internal/catalog"
	"github.com/abhisek/edulearn/internal/lesson"
	"github.com/abhisek/edulearn/internal/progress"
	"github.com/abhisek/edulearn/internal/quiz"
)

// AllComplete is the Next label when every listed quiz is done.
const AllComplete = "All Quizzes Complete"

// Quizzes is the summary shown above a quiz list.
type Quizzes struct {
	Completed int
	Total     int
	Average   int
	Next      string
}

// ForQuizzes summarizes the listed quizzes. Only scores of listed quizzes
// count toward the average.
func ForQuizzes(quizzes []quiz.Quiz, rec progress.Record) Quizzes {
	s := Quizzes{Total: len(quizzes), Next: AllComplete}
	var scores []int
	nextSet := false
	for _, q := range quizzes {
		if rec.IsCompleted(q.Key) {
			s.Completed++
		} else if !nextSet {
			s.Next = q.Title
			nextSet = true
		}
		if score, ok := rec.Score(q.Key); ok {
			scores = append(scores, score)
		}
	}
	s.Average = Average(scores)
	return s
}

// Average returns the rounded mean of scores, or 0 for none.
func Average(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, v := range scores {
		sum += v
	}
	if sum <= 0 {
		return 0
	}
	n := len(scores)
	return (2*sum + n) / (2 * n)
}

// Learner is the learner dashboard overview.
type Learner struct {
	TotalLessons     int
	CompletedLessons int
	CompletedQuizzes int
	AverageScore     int
}

// ForLearner builds the overview from the lesson and quiz records.
func ForLearner(lessons, quizzes progress.Record) Learner {
	scores := make([]int, 0, len(quizzes.Scores))
	for _, v := range quizzes.Scores {
		scores = append(scores, v)
	}
	return Learner{
		TotalLessons:     catalog.TotalLessons(),
		CompletedLessons: lessons.CompletedCount(),
		CompletedQuizzes: quizzes.CompletedCount(),
		AverageScore:     Average(scores),
	}
}

// CourseProgress is the completion of one lesson track.
type CourseProgress struct {
	CourseID  string
	Title     string
	Completed int
	Total     int
	Percent   int
}

// ForCourses returns per-course lesson completion in catalog order.
func ForCourses(courses []catalog.Course, rec progress.Record) []CourseProgress {
	out := make([]CourseProgress, len(courses))
	for i, c := range courses {
		total := c.LessonCount()
		done := min(rec.CompletedWithPrefix(c.ID), total)
		out[i] = CourseProgress{
			CourseID:  c.ID,
			Title:     c.Title,
			Completed: done,
			Total:     total,
			Percent:   lesson.CoursePercent(rec, c),
		}
	}
	return out
}
