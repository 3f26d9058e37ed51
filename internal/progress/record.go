package progress

import (
	"fmt"
	"strings"
)

// Storage keys for the two tracked features. Lessons and quizzes are
// persisted as separate records so a corrupt quiz record never wipes
// lesson progress.
const (
	LessonsKey = "edulearn_lessons"
	QuizzesKey = "edulearn_quizzes"
)

// Record is the persisted completion and score state for one feature.
// Keys in Completed and Scores have the form "{courseId}:{index}" so that
// several course tracks can share one record.
type Record struct {
	Completed    map[string]bool `json:"completed"`
	Scores       map[string]int  `json:"scores"`
	CurrentIndex int             `json:"currentIndex"`
	CourseIndex  int             `json:"courseIndex"`
}

// NewRecord returns the zero-valued record with initialized maps.
func NewRecord() Record {
	return Record{
		Completed: make(map[string]bool),
		Scores:    make(map[string]int),
	}
}

// Key builds the composite completion key for a lesson or quiz index.
func Key(courseID string, index int) string {
	return fmt.Sprintf("%s:%d", courseID, index)
}

// ScopedKey scopes a storage key to a learner. An empty userID returns
// the key unchanged.
func ScopedKey(key, userID string) string {
	if userID == "" {
		return key
	}
	return key + ":" + userID
}

// MarkCompleted sets completed[key] = true. Marking twice is a no-op.
func (r *Record) MarkCompleted(key string) {
	r.ensure()
	r.Completed[key] = true
}

// SetScore records a quiz percentage and marks the quiz completed, so a
// key in Scores always has a matching true entry in Completed. A retake
// overwrites the previous score.
func (r *Record) SetScore(key string, percentage int) {
	r.ensure()
	r.Completed[key] = true
	r.Scores[key] = percentage
}

// IsCompleted reports whether key is marked complete.
func (r Record) IsCompleted(key string) bool {
	return r.Completed[key]
}

// Score returns the stored percentage for key.
func (r Record) Score(key string) (int, bool) {
	s, ok := r.Scores[key]
	return s, ok
}

// CompletedWithPrefix counts completed keys that belong to courseID.
// Only keys of the form "{courseId}:..." match, so "web" never counts
// entries of a "webdev" track.
func (r Record) CompletedWithPrefix(courseID string) int {
	prefix := courseID + ":"
	n := 0
	for k, done := range r.Completed {
		if done && strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

// CompletedCount counts all true entries regardless of course.
func (r Record) CompletedCount() int {
	n := 0
	for _, done := range r.Completed {
		if done {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := Record{
		Completed:    make(map[string]bool, len(r.Completed)),
		Scores:       make(map[string]int, len(r.Scores)),
		CurrentIndex: r.CurrentIndex,
		CourseIndex:  r.CourseIndex,
	}
	for k, v := range r.Completed {
		out.Completed[k] = v
	}
	for k, v := range r.Scores {
		out.Scores[k] = v
	}
	return out
}

func (r *Record) ensure() {
	if r.Completed == nil {
		r.Completed = make(map[string]bool)
	}
	if r.Scores == nil {
		r.Scores = make(map[string]int)
	}
}

// Percent returns round(100*part/whole) with halves rounded up, clamped to
// [0,100]. It is 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	if part >= whole {
		return 100
	}
	return (200*part + whole) / (2 * whole)
}
