package lessons

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/edulearn/internal/catalog"
	"github.com/abhisek/edulearn/internal/kv"
	"github.com/abhisek/edulearn/internal/lesson"
	"github.com/abhisek/edulearn/internal/progress"
	"github.com/abhisek/edulearn/internal/screen"
)

func newTestScreen(t *testing.T) (*LessonsScreen, *progress.Store) {
	t.Helper()
	store := progress.NewStore(kv.NewMemory(), nil)
	svc := &screen.Services{
		Progress: store,
		Lessons:  lesson.NewTracker(store, progress.LessonsKey, catalog.Courses()),
	}
	s := New(svc)
	s.Init()
	return s, store
}

func press(s *LessonsScreen, keys ...tea.KeyPressMsg) {
	for _, k := range keys {
		s.Update(k)
	}
}

var (
	right = tea.KeyPressMsg{Code: tea.KeyRight}
	left  = tea.KeyPressMsg{Code: tea.KeyLeft}
	down  = tea.KeyPressMsg{Code: tea.KeyDown}
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	tab   = tea.KeyPressMsg{Code: tea.KeyTab}
	markC = tea.KeyPressMsg{Code: 'c', Text: "c"}
)

func TestStartsOnFirstLesson(t *testing.T) {
	s, _ := newTestScreen(t)
	assert.Equal(t, 0, s.pos.LessonIndex)
	assert.Contains(t, s.View(120, 40), "What is a Database?")
	assert.Equal(t, 0, s.percent)
}

func TestNextDoesNotComplete(t *testing.T) {
	s, store := newTestScreen(t)
	press(s, right)

	assert.Equal(t, 1, s.pos.LessonIndex)
	rec := store.Load(context.Background(), progress.LessonsKey)
	assert.Equal(t, 0, rec.CompletedCount())
	assert.Equal(t, 1, rec.CurrentIndex, "position is persisted")
}

func TestMarkCompleteDoesNotMove(t *testing.T) {
	s, store := newTestScreen(t)
	press(s, markC)

	assert.Equal(t, 0, s.pos.LessonIndex)
	assert.True(t, s.done[0])
	assert.Equal(t, 17, s.percent, "1 of 6 lessons")
	assert.True(t, store.Load(context.Background(), progress.LessonsKey).IsCompleted("web:0"))
}

func TestPrevClampsAtFirst(t *testing.T) {
	s, _ := newTestScreen(t)
	press(s, left)
	assert.Equal(t, 0, s.pos.LessonIndex)
}

func TestNextClampsAtLast(t *testing.T) {
	s, _ := newTestScreen(t)
	for i := 0; i < 10; i++ {
		press(s, right)
	}
	assert.Equal(t, 5, s.pos.LessonIndex)
	assert.Empty(t, s.upcoming)
}

func TestLockedLessonCannotBeOpened(t *testing.T) {
	s, _ := newTestScreen(t)
	press(s, down, down, enter)

	assert.Equal(t, 0, s.pos.LessonIndex, "two ahead of current is locked")
	assert.NotEmpty(t, s.flash)

	press(s, tea.KeyPressMsg{Code: tea.KeyUp}, enter)
	assert.Equal(t, 1, s.pos.LessonIndex, "the next lesson is reachable")
}

func TestTabSwitchesCourse(t *testing.T) {
	s, store := newTestScreen(t)
	press(s, right, tab)

	assert.Equal(t, 1, s.pos.CourseIndex)
	assert.Equal(t, 0, s.pos.LessonIndex, "switching course starts at its first lesson")
	assert.Equal(t, "Hello Python", s.pos.Lesson.Title)

	rec := store.Load(context.Background(), progress.LessonsKey)
	assert.Equal(t, 1, rec.CourseIndex)
}

func TestCompletionIsPerCourse(t *testing.T) {
	s, _ := newTestScreen(t)
	press(s, markC, tab)

	assert.Equal(t, 0, s.percent)
	assert.False(t, s.done[0])
}

func TestUpcomingPreview(t *testing.T) {
	s, _ := newTestScreen(t)
	require.Len(t, s.upcoming, upcomingCount)
	assert.Equal(t, "Tables and Rows", s.upcoming[0].Title)

	press(s, right, right, right, right)
	assert.Len(t, s.upcoming, 1)
}

func TestResumedReloadsPosition(t *testing.T) {
	s, store := newTestScreen(t)
	ctx := context.Background()
	rec := store.Load(ctx, progress.LessonsKey)
	rec.CurrentIndex = 3
	store.Save(ctx, progress.LessonsKey, rec)

	s.Update(screen.ResumedMsg{})
	assert.Equal(t, 3, s.pos.LessonIndex)
	assert.Equal(t, 3, s.cursor)
}
