// Package unlock decides which quizzes and lessons a learner may open.
//
// Quiz gating is a coarse step function: every quiz gate past the first
// requires another ceil(totalUnits/totalGates) completed lessons in the
// same course. Two consecutive gates may share a threshold when the lesson
// count does not divide evenly; rounding up favors unlocking.
package unlock

import "github.com/abhisek/edulearn/internal/progress"

// Mode selects how a Policy gates quizzes.
type Mode int

const (
	// GateByLessons unlocks quiz gates from completed lesson counts.
	GateByLessons Mode = iota
	// Open leaves every quiz accessible. Server-provided quizzes carry no
	// lesson ratio, so they use this mode.
	Open
)

func (m Mode) String() string {
	switch m {
	case GateByLessons:
		return "gate-by-lessons"
	case Open:
		return "open"
	}
	return "unknown"
}

// Threshold returns the number of completed lessons needed to unlock quiz
// index. It panics when totalGates <= 0; a course without quizzes has no
// gates to evaluate.
func Threshold(index, totalUnits, totalGates int) int {
	if totalGates <= 0 {
		panic("unlock: totalGates must be positive")
	}
	if index <= 0 {
		return 0
	}
	per := (totalUnits + totalGates - 1) / totalGates
	return per * index
}

// IsUnlocked reports whether quiz index of courseID is accessible given the
// lesson progress record. Index 0 is always unlocked. When totalUnits is 0
// nothing past index 0 unlocks.
func IsUnlocked(courseID string, index int, rec progress.Record, totalUnits, totalGates int) bool {
	if index <= 0 {
		return true
	}
	threshold := Threshold(index, totalUnits, totalGates)
	if totalUnits <= 0 {
		return false
	}
	return rec.CompletedWithPrefix(courseID) >= threshold
}

// LessonLocked reports whether a lesson should be shown with a locked marker
// in the lesson list. The current lesson and the one right after it are
// always reachable.
func LessonLocked(index, currentIndex int) bool {
	return index > currentIndex+1
}

// Policy binds a gating mode to a course's lesson and quiz counts.
type Policy struct {
	Mode       Mode
	CourseID   string
	TotalUnits int
	TotalGates int
}

// Unlocked applies the policy's mode to quiz index.
func (p Policy) Unlocked(index int, rec progress.Record) bool {
	if p.Mode == Open {
		return true
	}
	return IsUnlocked(p.CourseID, index, rec, p.TotalUnits, p.TotalGates)
}

// Remaining returns how many more lessons must be completed before quiz
// index unlocks. It is 0 for unlocked quizzes.
func (p Policy) Remaining(index int, rec progress.Record) int {
	if p.Unlocked(index, rec) {
		return 0
	}
	if p.TotalUnits <= 0 {
		return 0
	}
	need := Threshold(index, p.TotalUnits, p.TotalGates) - rec.CompletedWithPrefix(p.CourseID)
	if need < 0 {
		return 0
	}
	return need
}
