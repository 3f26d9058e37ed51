package quizzes

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/catalog"
	"github.com/abhisek/edulearn/internal/kv"
	"github.com/abhisek/edulearn/internal/lesson"
	"github.com/abhisek/edulearn/internal/progress"
	"github.com/abhisek/edulearn/internal/quiz"
	"github.com/abhisek/edulearn/internal/router"
	"github.com/abhisek/edulearn/internal/screen"
)

type fakeRemote struct {
	quizzes []api.Quiz
	err     error
}

func (f *fakeRemote) ListQuizzes(context.Context) ([]api.Quiz, error) { return f.quizzes, f.err }
func (f *fakeRemote) ListLessons(context.Context) ([]api.Lesson, error) { return nil, nil }

func (f *fakeRemote) LearnerStats(context.Context) (api.LearnerStats, error) {
	return api.LearnerStats{}, nil
}
func (f *fakeRemote) QuizAnalytics(context.Context) ([]api.QuizAnalytics, error) { return nil, nil }

func testServices() *screen.Services {
	store := progress.NewStore(kv.NewMemory(), nil)
	return &screen.Services{
		Progress: store,
		Lessons:  lesson.NewTracker(store, progress.LessonsKey, catalog.Courses()),
		Quiz:     quiz.NewMachine(quiz.Config{Store: store}),
	}
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestFirstQuizStartsSession(t *testing.T) {
	s := New(testServices())
	s.Init()

	_, cmd := s.Update(key("enter"))
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok, "expected PushScreenMsg")
	assert.Equal(t, "MySQL Basics Quiz", push.Screen.Title())
}

func TestLockedQuizShowsRemaining(t *testing.T) {
	s := New(testServices())
	s.Init()
	s.Update(key("down"))

	_, cmd := s.Update(key("enter"))

	assert.Nil(t, cmd)
	assert.Contains(t, s.View(110, 40), "Complete 2 more lessons")
}

func TestResumeRefreshesUnlocks(t *testing.T) {
	svc := testServices()
	s := New(svc)
	s.Init()
	s.Update(key("down"))

	ctx := context.Background()
	svc.Lessons.MarkComplete(ctx)
	svc.Lessons.Next(ctx)
	svc.Lessons.MarkComplete(ctx)

	s.Update(screen.ResumedMsg{})
	_, cmd := s.Update(key("enter"))
	require.NotNil(t, cmd, "two web lessons unlock the second quiz")
}

func TestCompletedQuizShowsRetake(t *testing.T) {
	svc := testServices()
	rec := progress.NewRecord()
	rec.SetScore("web:0", 67)
	svc.Progress.Save(context.Background(), progress.QuizzesKey, rec)

	s := New(svc)
	s.Init()
	view := s.View(110, 40)

	assert.Contains(t, view, "Retake Quiz")
	assert.Contains(t, view, "67%")
	assert.Contains(t, view, "1/3")
	assert.Contains(t, view, "MySQL Safety Quiz", "next incomplete quiz")
}

func TestTabCyclesTracks(t *testing.T) {
	s := New(testServices())
	s.Init()
	n := len(s.tracks)

	for i := 0; i < n; i++ {
		s.Update(key("tab"))
	}
	assert.Equal(t, 0, s.active, "tab wraps around")

	s.Update(key("tab"))
	assert.Equal(t, "Python Basics", s.current().title)
}

func TestServerTrackLoaded(t *testing.T) {
	svc := testServices()
	svc.Remote = &fakeRemote{quizzes: []api.Quiz{
		{ID: "q1", Title: "Server Quiz", IsActive: true, PassingScore: 70, Questions: []api.QuizQuestion{
			{Text: "2+2?", Options: []string{"3", "4"}, CorrectIndex: 1, Points: 1},
		}},
		{ID: "q2", Title: "Draft", IsActive: false, Questions: []api.QuizQuestion{
			{Text: "?", Options: []string{"a"}, Points: 1},
		}},
	}}
	s := New(svc)
	catalogTracks := len(s.tracks)

	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())

	require.Len(t, s.tracks, catalogTracks+1)
	server := s.tracks[len(s.tracks)-1]
	assert.Equal(t, serverTrackTitle, server.title)
	require.Len(t, server.quizzes, 1, "inactive quizzes are hidden")
	assert.Equal(t, "q1", server.quizzes[0].Key)
	assert.True(t, server.policy.Unlocked(0, progress.NewRecord()))
}

func TestServerErrorIsShown(t *testing.T) {
	svc := testServices()
	svc.Remote = &fakeRemote{err: &api.APIError{Status: 500, Message: "database down"}}
	s := New(svc)

	cmd := s.Init()
	s.Update(cmd())

	assert.True(t, strings.Contains(s.View(110, 40), "database down"))
}

func TestServerErrorKeepsCatalog(t *testing.T) {
	svc := testServices()
	svc.Remote = &fakeRemote{err: errors.New("dial tcp: refused")}
	s := New(svc)
	n := len(s.tracks)

	cmd := s.Init()
	s.Update(cmd())

	assert.Len(t, s.tracks, n)
}

func serverQuizzes() []api.Quiz {
	return []api.Quiz{{ID: "q1", Title: "Server Quiz", IsActive: true, Questions: []api.QuizQuestion{
		{Text: "2+2?", Options: []string{"3", "4"}, CorrectIndex: 1, Points: 1},
	}}}
}

func TestStaleListResponseIsDropped(t *testing.T) {
	svc := testServices()
	svc.Remote = &fakeRemote{quizzes: serverQuizzes()}

	old := New(svc)
	oldCmd := old.Init()
	old.Close()

	s := New(svc)
	catalogTracks := len(s.tracks)
	cmd := s.Init()

	s.Update(cmd())
	s.Update(oldCmd())

	assert.Len(t, s.tracks, catalogTracks+1, "only the current request adds a server track")
}

func TestClosedScreenIgnoresResponse(t *testing.T) {
	svc := testServices()
	svc.Remote = &fakeRemote{quizzes: serverQuizzes()}
	s := New(svc)
	n := len(s.tracks)

	cmd := s.Init()
	s.Close()
	s.Update(cmd())

	assert.Len(t, s.tracks, n)
}

func TestResumeRefetchesSwallowedResponse(t *testing.T) {
	svc := testServices()
	svc.Remote = &fakeRemote{quizzes: serverQuizzes()}
	s := New(svc)
	n := len(s.tracks)

	first := s.Init()
	_, again := s.Update(screen.ResumedMsg{})
	require.NotNil(t, again, "pending request is reissued on resume")

	s.Update(first())
	assert.Len(t, s.tracks, n, "superseded response is dropped")
	s.Update(again())
	assert.Len(t, s.tracks, n+1)
}
