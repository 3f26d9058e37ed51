// Package dashboard shows the learner overview and, for staff accounts,
// the per-quiz analytics report from the server.
package dashboard

import (
	"context"
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/auth"
	"github.com/abhisek/edulearn/internal/catalog"
	"github.com/abhisek/edulearn/internal/screen"
	"github.com/abhisek/edulearn/internal/summary"
	"github.com/abhisek/edulearn/internal/ui/components"
	"github.com/abhisek/edulearn/internal/ui/layout"
	"github.com/abhisek/edulearn/internal/ui/theme"
)

type statsMsg struct {
	Stats api.LearnerStats
	Err   error
}

type analyticsMsg struct {
	Rows []api.QuizAnalytics
	Err  error
}

type lessonsMsg struct {
	Lessons []api.Lesson
	Err     error
}

type categoryCount struct {
	name  string
	count int
}

type trackSummary struct {
	title string
	sum   summary.Quizzes
}

// DashboardScreen renders local progress figures and any server figures
// available for the signed-in account.
type DashboardScreen struct {
	svc     *screen.Services
	user    api.User
	signed  bool
	landing auth.Landing

	learner summary.Learner
	courses []summary.CourseProgress
	tracks  []trackSummary

	stats        *api.LearnerStats
	statsErr     string
	analytics    []api.QuizAnalytics
	analyticsErr string
	lessons      []categoryCount
	lessonTotal  int
	lessonsDone  bool
	lessonsErr   string
	pending      int
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)

// New creates a dashboard. The landing is chosen from the signed-in role
// when the screen is shown.
func New(svc *screen.Services) *DashboardScreen {
	return &DashboardScreen{svc: svc, landing: auth.LandingLearner}
}

func (s *DashboardScreen) Init() tea.Cmd {
	ctx := context.Background()
	s.user, s.signed = s.svc.User(ctx)
	s.landing = auth.LandingLearner
	if s.signed {
		s.landing = auth.LandingFor(s.user.Role)
	}
	s.refresh()

	if s.svc.Remote == nil || !s.signed {
		return nil
	}
	remote := s.svc.Remote
	cmds := []tea.Cmd{func() tea.Msg {
		st, err := remote.LearnerStats(context.Background())
		return statsMsg{Stats: st, Err: err}
	}}
	if s.landing != auth.LandingLearner {
		cmds = append(cmds, func() tea.Msg {
			rows, err := remote.QuizAnalytics(context.Background())
			return analyticsMsg{Rows: rows, Err: err}
		}, func() tea.Msg {
			lessons, err := remote.ListLessons(context.Background())
			return lessonsMsg{Lessons: lessons, Err: err}
		})
	}
	s.pending = len(cmds)
	return tea.Batch(cmds...)
}

func (s *DashboardScreen) refresh() {
	ctx := context.Background()
	lessons := s.svc.Lessons.Record(ctx)
	quizzes := s.svc.QuizRecord(ctx)

	s.learner = summary.ForLearner(lessons, quizzes)
	s.courses = summary.ForCourses(catalog.Courses(), lessons)
	s.tracks = s.tracks[:0]
	for _, t := range catalog.QuizTracks() {
		s.tracks = append(s.tracks, trackSummary{
			title: t.Title,
			sum:   summary.ForQuizzes(catalog.QuizzesFor(t), quizzes),
		})
	}
}

func (s *DashboardScreen) Title() string {
	switch s.landing {
	case auth.LandingAdmin:
		return "Admin Dashboard"
	case auth.LandingInstructor:
		return "Instructor Dashboard"
	}
	return "Dashboard"
}

func (s *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		s.pending--
		if msg.Err != nil {
			s.statsErr = api.Message(msg.Err, "Could not load server stats")
			s.svc.Log().Warn("learner stats", zap.Error(msg.Err))
			return s, nil
		}
		st := msg.Stats
		s.stats = &st
		s.statsErr = ""

	case analyticsMsg:
		s.pending--
		if msg.Err != nil {
			s.analyticsErr = api.Message(msg.Err, "Could not load quiz analytics")
			s.svc.Log().Warn("quiz analytics", zap.Error(msg.Err))
			return s, nil
		}
		s.analytics = msg.Rows
		s.analyticsErr = ""

	case lessonsMsg:
		s.pending--
		if msg.Err != nil {
			s.lessonsErr = api.Message(msg.Err, "Could not load lessons")
			s.svc.Log().Warn("list lessons", zap.Error(msg.Err))
			return s, nil
		}
		s.lessons = countByCategory(msg.Lessons)
		s.lessonTotal = len(msg.Lessons)
		s.lessonsDone = true
		s.lessonsErr = ""

	case screen.ResumedMsg:
		s.refresh()

	case tea.KeyMsg:
		if msg.String() == "r" {
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *DashboardScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	l := s.learner

	greeting := "Welcome! Sign in to sync with the server."
	if s.signed {
		name := s.user.Name
		if name == "" {
			name = s.user.Email
		}
		greeting = fmt.Sprintf("Welcome back, %s.", name)
	}

	sections := []string{
		theme.Subtitle.Render(greeting),
		components.Tiles(cw,
			[2]string{"Lessons", fmt.Sprintf("%d/%d", l.CompletedLessons, l.TotalLessons)},
			[2]string{"Quizzes done", fmt.Sprintf("%d", l.CompletedQuizzes)},
			[2]string{"Average score", fmt.Sprintf("%d%%", l.AverageScore)},
		),
		s.renderCourses(cw),
		s.renderQuizzes(cw),
	}
	if s.signed && s.svc.Remote != nil {
		sections = append(sections, s.renderServer(cw))
		if s.landing != auth.LandingLearner {
			sections = append(sections, s.renderLessons(cw), s.renderAnalytics(cw))
		}
	}
	return components.Center(strings.Join(sections, "\n"), width)
}

func (s *DashboardScreen) renderCourses(cw int) string {
	var b strings.Builder
	barWidth := cw - 4
	for _, c := range s.courses {
		label := fmt.Sprintf("%-14s %d/%d", c.Title, c.Completed, c.Total)
		b.WriteString(components.NewProgressBar(label, c.Percent, true, barWidth).View())
		b.WriteString("\n")
	}
	return components.Card("Lesson progress", strings.TrimRight(b.String(), "\n"), cw)
}

func (s *DashboardScreen) renderQuizzes(cw int) string {
	var b strings.Builder
	for _, t := range s.tracks {
		b.WriteString(fmt.Sprintf("%-14s %d/%d done   avg %d%%   ",
			t.title, t.sum.Completed, t.sum.Total, t.sum.Average))
		b.WriteString(theme.Hint.Render("next: " + t.sum.Next))
		b.WriteString("\n")
	}
	return components.Card("Quizzes", strings.TrimRight(b.String(), "\n"), cw)
}

func (s *DashboardScreen) renderServer(cw int) string {
	switch {
	case s.statsErr != "":
		return components.Card("Server", theme.ErrorText.Render(s.statsErr), cw)
	case s.stats == nil:
		return components.Card("Server", theme.Hint.Render("Loading..."), cw)
	}
	st := s.stats
	body := fmt.Sprintf("Lessons %d/%d   Quizzes passed %d   Attempts %d   Success rate %.0f%%",
		st.CompletedLessons, st.TotalLessons, st.QuizzesPassed, st.TotalQuizAttempts, st.SuccessRate)
	return components.Card("Server", body, cw)
}

func (s *DashboardScreen) renderAnalytics(cw int) string {
	switch {
	case s.analyticsErr != "":
		return components.Card("Quiz analytics", theme.ErrorText.Render(s.analyticsErr), cw)
	case s.analytics == nil && s.pending > 0:
		return components.Card("Quiz analytics", theme.Hint.Render("Loading..."), cw)
	case len(s.analytics) == 0:
		return components.Card("Quiz analytics", theme.Hint.Render("No attempts yet."), cw)
	}
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%-28s %8s %8s %8s", "Quiz", "Attempts", "Average", "Passed")))
	b.WriteString("\n")
	for _, row := range s.analytics {
		title := row.Title
		if len(title) > 28 {
			title = title[:27] + "…"
		}
		b.WriteString(fmt.Sprintf("%-28s %8d %7d%% %7d%%\n", title, row.Attempts, row.AveragePercentage, row.PassRate))
	}
	return components.Card("Quiz analytics", strings.TrimRight(b.String(), "\n"), cw)
}

// countByCategory groups lessons by category, largest first.
func countByCategory(lessons []api.Lesson) []categoryCount {
	idx := map[string]int{}
	var out []categoryCount
	for _, l := range lessons {
		i, ok := idx[l.Category]
		if !ok {
			i = len(out)
			idx[l.Category] = i
			out = append(out, categoryCount{name: l.Category})
		}
		out[i].count++
	}
	slices.SortStableFunc(out, func(a, b categoryCount) int { return cmp.Compare(b.count, a.count) })
	return out
}

func (s *DashboardScreen) renderLessons(cw int) string {
	switch {
	case s.lessonsErr != "":
		return components.Card("Server lessons", theme.ErrorText.Render(s.lessonsErr), cw)
	case !s.lessonsDone:
		return components.Card("Server lessons", theme.Hint.Render("Loading..."), cw)
	case s.lessonTotal == 0:
		return components.Card("Server lessons", theme.Hint.Render("No lessons published yet."), cw)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d lessons published\n", s.lessonTotal))
	for _, c := range s.lessons {
		b.WriteString(fmt.Sprintf("%-20s %4d\n", c.name, c.count))
	}
	return components.Card("Server lessons", strings.TrimRight(b.String(), "\n"), cw)
}
