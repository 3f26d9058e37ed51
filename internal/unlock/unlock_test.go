package unlock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/edulearn/internal/progress"
)

func completed(courseID string, n int) progress.Record {
	rec := progress.NewRecord()
	for i := 0; i < n; i++ {
		rec.MarkCompleted(progress.Key(courseID, i))
	}
	return rec
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		name                string
		index, units, gates int
		want                int
	}{
		{"first gate is free", 0, 6, 2, 0},
		{"even split", 1, 6, 2, 3},
		{"even split second", 2, 6, 2, 6},
		{"ceil rounds up", 1, 6, 4, 2},
		{"shared thresholds never decrease", 2, 6, 4, 4},
		{"more gates than units", 1, 2, 3, 1},
		{"no units", 1, 0, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Threshold(tt.index, tt.units, tt.gates))
		})
	}
}

func TestThreshold_PanicsOnZeroGates(t *testing.T) {
	assert.Panics(t, func() { Threshold(1, 6, 0) })
	assert.Panics(t, func() { IsUnlocked("web", 1, progress.NewRecord(), 6, 0) })
}

func TestIsUnlocked_GateScenario(t *testing.T) {
	// 6 lessons, 2 quiz gates: each gate needs 3 more lessons.
	assert.False(t, IsUnlocked("web", 1, completed("web", 2), 6, 2))
	assert.True(t, IsUnlocked("web", 1, completed("web", 3), 6, 2))
}

func TestIsUnlocked_IndexZeroAlwaysOpen(t *testing.T) {
	assert.True(t, IsUnlocked("web", 0, progress.NewRecord(), 0, 1))
	assert.True(t, IsUnlocked("web", 0, progress.NewRecord(), 6, 2))
}

func TestIsUnlocked_NoUnits(t *testing.T) {
	rec := completed("web", 10)
	assert.False(t, IsUnlocked("web", 1, rec, 0, 3))
}

func TestIsUnlocked_OtherCourseDoesNotCount(t *testing.T) {
	rec := completed("webdev", 5)
	assert.False(t, IsUnlocked("web", 1, rec, 6, 2))
}

func TestIsUnlocked_Monotonic(t *testing.T) {
	for units := 0; units <= 8; units++ {
		for gates := 1; gates <= 4; gates++ {
			for done := 0; done <= units; done++ {
				rec := completed("web", done)
				for hi := 1; hi < gates; hi++ {
					if !IsUnlocked("web", hi, rec, units, gates) {
						continue
					}
					for lo := 0; lo < hi; lo++ {
						assert.True(t, IsUnlocked("web", lo, rec, units, gates),
							"units=%d gates=%d done=%d: %d unlocked but %d locked", units, gates, done, hi, lo)
					}
				}
			}
		}
	}
}

func TestLessonLocked(t *testing.T) {
	assert.False(t, LessonLocked(0, 0))
	assert.False(t, LessonLocked(1, 0))
	assert.True(t, LessonLocked(2, 0))
	assert.False(t, LessonLocked(3, 2))
}

func TestPolicy(t *testing.T) {
	rec := completed("web", 1)

	gated := Policy{Mode: GateByLessons, CourseID: "web", TotalUnits: 6, TotalGates: 3}
	assert.True(t, gated.Unlocked(0, rec))
	assert.False(t, gated.Unlocked(1, rec))
	assert.Equal(t, 1, gated.Remaining(1, rec))
	assert.Equal(t, 3, gated.Remaining(2, rec))

	open := Policy{Mode: Open}
	assert.True(t, open.Unlocked(5, progress.NewRecord()))
	assert.Equal(t, 0, open.Remaining(5, progress.NewRecord()))
}
