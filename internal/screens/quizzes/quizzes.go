// Package quizzes lists quiz tracks with their lock state and scores.
package quizzes

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/catalog"
	"github.com/abhisek/edulearn/internal/progress"
	"github.com/abhisek/edulearn/internal/quiz"
	"github.com/abhisek/edulearn/internal/router"
	"github.com/abhisek/edulearn/internal/screen"
	"github.com/abhisek/edulearn/internal/screens/quizsession"
	"github.com/abhisek/edulearn/internal/summary"
	"github.com/abhisek/edulearn/internal/ui/components"
	"github.com/abhisek/edulearn/internal/ui/layout"
	"github.com/abhisek/edulearn/internal/ui/theme"
	"github.com/abhisek/edulearn/internal/unlock"
)

const serverTrackTitle = "Server"

// requests numbers server list requests across screen instances.
var requests atomic.Uint64

type remoteQuizzesMsg struct {
	request uint64
	Quizzes []api.Quiz
	Err     error
}

type track struct {
	title   string
	quizzes []quiz.Quiz
	policy  unlock.Policy
}

// QuizzesScreen shows one quiz track at a time.
type QuizzesScreen struct {
	svc     *screen.Services
	tracks  []track
	active  int
	cursor  int
	lessons progress.Record
	scores  progress.Record
	flash   string

	remoteLoading bool
	remoteErr     string
	request       uint64 // pending list request; 0 when none
}

var _ screen.Screen = (*QuizzesScreen)(nil)
var _ screen.Closer = (*QuizzesScreen)(nil)
var _ screen.KeyHintProvider = (*QuizzesScreen)(nil)

// New creates the quiz list over the catalog tracks.
func New(svc *screen.Services) *QuizzesScreen {
	s := &QuizzesScreen{svc: svc}
	for _, t := range catalog.QuizTracks() {
		s.tracks = append(s.tracks, track{
			title:   t.Title,
			quizzes: catalog.QuizzesFor(t),
			policy:  catalog.PolicyFor(t),
		})
	}
	return s
}

func (s *QuizzesScreen) Init() tea.Cmd {
	s.refresh()
	if s.svc.Remote == nil {
		return nil
	}
	return s.fetch()
}

// fetch starts a server list request. Only the latest request's response
// is applied.
func (s *QuizzesScreen) fetch() tea.Cmd {
	s.remoteLoading = true
	s.request = requests.Add(1)
	req, remote := s.request, s.svc.Remote
	return func() tea.Msg {
		qs, err := remote.ListQuizzes(context.Background())
		return remoteQuizzesMsg{request: req, Quizzes: qs, Err: err}
	}
}

// Close drops any pending server list response.
func (s *QuizzesScreen) Close() {
	s.request = 0
	s.remoteLoading = false
}

func (s *QuizzesScreen) refresh() {
	ctx := context.Background()
	s.lessons = s.svc.Lessons.Record(ctx)
	s.scores = s.svc.QuizRecord(ctx)
}

func (s *QuizzesScreen) Title() string {
	return "Quizzes"
}

func (s *QuizzesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Tab", Description: "Track"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *QuizzesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ResumedMsg:
		s.refresh()
		if s.remoteLoading {
			// The response went to the screen that was on top.
			return s, s.fetch()
		}
		return s, nil

	case remoteQuizzesMsg:
		if msg.request == 0 || msg.request != s.request {
			return s, nil
		}
		s.request = 0
		s.remoteLoading = false
		if msg.Err != nil {
			s.remoteErr = api.Message(msg.Err, "Could not load server quizzes")
			s.svc.Log().Warn("list server quizzes", zap.Error(msg.Err))
			return s, nil
		}
		s.addServerTrack(msg.Quizzes)
		return s, nil

	case tea.KeyMsg:
		s.flash = ""
		switch msg.String() {
		case "tab", "right", "l":
			s.switchTrack(1)
		case "shift+tab", "left", "h":
			s.switchTrack(-1)
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.current().quizzes)-1 {
				s.cursor++
			}
		case "enter":
			return s, s.start()
		}
	}
	return s, nil
}

// addServerTrack appends active server quizzes as their own track. Server
// quizzes are not gated on catalog lessons.
func (s *QuizzesScreen) addServerTrack(qs []api.Quiz) {
	var sessions []quiz.Quiz
	for _, q := range qs {
		if !q.IsActive || len(q.Questions) == 0 {
			continue
		}
		sessions = append(sessions, q.ForSession())
	}
	if len(sessions) == 0 {
		return
	}
	s.tracks = slices.DeleteFunc(s.tracks, func(t track) bool { return t.title == serverTrackTitle })
	if s.active >= len(s.tracks) {
		s.active, s.cursor = 0, 0
	}
	s.tracks = append(s.tracks, track{
		title:   serverTrackTitle,
		quizzes: sessions,
		policy:  unlock.Policy{Mode: unlock.Open, TotalGates: len(sessions)},
	})
}

func (s *QuizzesScreen) switchTrack(delta int) {
	n := len(s.tracks)
	if n == 0 {
		return
	}
	s.active = (s.active + delta + n) % n
	s.cursor = 0
}

func (s *QuizzesScreen) current() track {
	if len(s.tracks) == 0 {
		return track{}
	}
	return s.tracks[s.active]
}

func (s *QuizzesScreen) start() tea.Cmd {
	t := s.current()
	if s.cursor >= len(t.quizzes) {
		return nil
	}
	if !t.policy.Unlocked(s.cursor, s.lessons) {
		s.flash = fmt.Sprintf("Complete %d more lessons to unlock this quiz.",
			t.policy.Remaining(s.cursor, s.lessons))
		return nil
	}
	q := t.quizzes[s.cursor]
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: quizsession.New(s.svc, q)}
	}
}

func (s *QuizzesScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	t := s.current()

	titles := make([]string, len(s.tracks))
	for i, tr := range s.tracks {
		titles[i] = tr.title
	}

	sum := summary.ForQuizzes(t.quizzes, s.scores)
	tiles := components.Tiles(cw,
		[2]string{"Completed", fmt.Sprintf("%d/%d", sum.Completed, sum.Total)},
		[2]string{"Average", fmt.Sprintf("%d%%", sum.Average)},
		[2]string{"Up next", sum.Next},
	)

	var b strings.Builder
	for i, q := range t.quizzes {
		b.WriteString(s.renderRow(i, q, t.policy))
		b.WriteString("\n")
	}
	if len(t.quizzes) == 0 {
		b.WriteString(theme.Hint.Render("No quizzes in this track."))
		b.WriteString("\n")
	}
	if s.flash != "" {
		b.WriteString("\n" + theme.ErrorText.Render(s.flash) + "\n")
	}
	switch {
	case s.remoteLoading:
		b.WriteString("\n" + theme.Hint.Render("Loading server quizzes..."))
	case s.remoteErr != "":
		b.WriteString("\n" + theme.Hint.Render(s.remoteErr))
	}

	sections := []string{
		components.Tabs(titles, s.active),
		tiles,
		components.Card(t.title, b.String(), cw),
	}
	return components.Center(strings.Join(sections, "\n"), width)
}

func (s *QuizzesScreen) renderRow(i int, q quiz.Quiz, policy unlock.Policy) string {
	prefix := "  "
	if i == s.cursor {
		prefix = "▸ "
	}
	name := fmt.Sprintf("%s%d. %s", prefix, i+1, q.Title)

	var status string
	unlocked := policy.Unlocked(i, s.lessons)
	switch {
	case !unlocked:
		status = theme.Locked.Render(fmt.Sprintf("Locked · %d lessons to go", policy.Remaining(i, s.lessons)))
	case s.scores.IsCompleted(q.Key):
		score, _ := s.scores.Score(q.Key)
		style := theme.Incorrect
		if score >= q.Passing() {
			style = theme.Correct
		}
		status = "Retake Quiz " + style.Render(fmt.Sprintf("%d%%", score))
	default:
		status = theme.Subtitle.Render("Start Quiz")
	}

	detail := fmt.Sprintf("%d questions", len(q.Questions))
	if q.LessonTitle != "" {
		detail = q.LessonTitle + " · " + detail
	}

	style := theme.Unselected
	if !unlocked {
		style = theme.Locked
	} else if i == s.cursor {
		style = theme.Selected
	}
	return style.Render(name) + "\n" + theme.Subtitle.Render("     "+detail) + "   " + status
}
