// Package lessons is the lesson reader: course tabs, the current lesson
// card and the lesson list.
package lessons

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edulearn/internal/catalog"
	"github.com/abhisek/edulearn/internal/lesson"
	"github.com/abhisek/edulearn/internal/screen"
	"github.com/abhisek/edulearn/internal/ui/components"
	"github.com/abhisek/edulearn/internal/ui/layout"
	"github.com/abhisek/edulearn/internal/ui/theme"
	"github.com/abhisek/edulearn/internal/unlock"
)

const upcomingCount = 3

// LessonsScreen reads and completes lessons through a lesson.Tracker.
type LessonsScreen struct {
	tracker  *lesson.Tracker
	courses  []catalog.Course
	pos      lesson.Position
	done     map[int]bool
	percent  int
	upcoming []catalog.Lesson
	cursor   int
	flash    string
}

var _ screen.Screen = (*LessonsScreen)(nil)
var _ screen.KeyHintProvider = (*LessonsScreen)(nil)

// New creates the lesson reader.
func New(svc *screen.Services) *LessonsScreen {
	return &LessonsScreen{tracker: svc.Lessons, courses: catalog.Courses()}
}

func (s *LessonsScreen) Init() tea.Cmd {
	s.load(s.tracker.Current(context.Background()))
	return nil
}

// load refreshes all derived state from pos and moves the list cursor onto
// the current lesson.
func (s *LessonsScreen) load(pos lesson.Position) {
	ctx := context.Background()
	s.pos = pos
	s.cursor = pos.LessonIndex
	s.percent = s.tracker.Percent(ctx)
	s.upcoming = s.tracker.Upcoming(ctx, upcomingCount)
	s.done = make(map[int]bool, len(pos.Lessons))
	for i := range pos.Lessons {
		s.done[i] = s.tracker.IsCompleted(ctx, i)
	}
}

func (s *LessonsScreen) Title() string {
	return "Lessons"
}

func (s *LessonsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Prev/Next"},
		{Key: "c", Description: "Mark complete"},
		{Key: "↑↓", Description: "List"},
		{Key: "Enter", Description: "Open"},
		{Key: "Tab", Description: "Course"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ResumedMsg:
		s.load(s.tracker.Current(context.Background()))
	case tea.KeyMsg:
		s.handleKey(msg.String())
	}
	return s, nil
}

func (s *LessonsScreen) handleKey(key string) {
	ctx := context.Background()
	s.flash = ""
	switch key {
	case "tab":
		s.load(s.tracker.Select(ctx, (s.pos.CourseIndex+1)%len(s.courses)))
	case "shift+tab":
		s.load(s.tracker.Select(ctx, (s.pos.CourseIndex-1+len(s.courses))%len(s.courses)))
	case "right", "l", "n":
		s.load(s.tracker.Next(ctx))
	case "left", "h", "p":
		s.load(s.tracker.Prev(ctx))
	case "c", "C":
		s.load(s.tracker.MarkComplete(ctx))
		s.flash = fmt.Sprintf("Completed %q.", s.pos.Lesson.Title)
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.pos.Lessons)-1 {
			s.cursor++
		}
	case "enter":
		if unlock.LessonLocked(s.cursor, s.pos.LessonIndex) {
			s.flash = "Finish the lessons before this one first."
			return
		}
		s.load(s.tracker.Goto(ctx, s.cursor))
	}
}

func (s *LessonsScreen) View(width, height int) string {
	if len(s.pos.Lessons) == 0 {
		return components.Message("This course has no lessons yet.", width)
	}
	cw := components.ContentWidth(width)

	titles := make([]string, len(s.courses))
	for i, c := range s.courses {
		titles[i] = c.Title
	}

	bar := components.NewProgressBar(
		fmt.Sprintf("Lesson %d of %d", s.pos.LessonIndex+1, len(s.pos.Lessons)),
		s.percent, true, cw).View()

	sections := []string{
		components.Tabs(titles, s.pos.CourseIndex),
		bar,
		s.renderLesson(cw),
	}
	if s.flash != "" {
		sections = append(sections, theme.Hint.Render(s.flash))
	}
	if compact := layout.IsCompactWidth(width); compact {
		sections = append(sections, s.renderList(cw))
	} else {
		half := cw/2 - 1
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			s.renderList(half), " ", s.renderUpcoming(cw-half-1)))
	}
	return components.Center(strings.Join(sections, "\n"), width)
}

func (s *LessonsScreen) renderLesson(cw int) string {
	l := s.pos.Lesson
	var b strings.Builder
	status := theme.Hint.Render("Not completed yet")
	if s.done[s.pos.LessonIndex] {
		status = theme.Correct.Render("✓ Completed")
	}
	b.WriteString(theme.Subtitle.Render(l.Module) + "   " + status + "\n")
	if l.Desc != "" {
		b.WriteString(theme.Body.Render(l.Desc) + "\n")
	}
	for _, c := range l.Cards {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(c.Title) + "\n")
		b.WriteString(theme.Body.Render(c.Body) + "\n")
	}
	return components.Card(l.Title, strings.TrimRight(b.String(), "\n"), cw)
}

func (s *LessonsScreen) renderList(cw int) string {
	var b strings.Builder
	for i, l := range s.pos.Lessons {
		marker := "  "
		switch {
		case s.done[i]:
			marker = "✓ "
		case i == s.pos.LessonIndex:
			marker = "▸ "
		case unlock.LessonLocked(i, s.pos.LessonIndex):
			marker = "🔒"
		}
		line := fmt.Sprintf("%s %d. %s", marker, i+1, l.Title)

		style := theme.Unselected
		switch {
		case i == s.cursor:
			style = theme.Selected
		case unlock.LessonLocked(i, s.pos.LessonIndex):
			style = theme.Locked
		case s.done[i]:
			style = theme.Correct
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return components.Card(s.pos.Course.Title, strings.TrimRight(b.String(), "\n"), cw)
}

func (s *LessonsScreen) renderUpcoming(cw int) string {
	if len(s.upcoming) == 0 {
		return components.Card("Next lessons", theme.Hint.Render("You are on the last lesson."), cw)
	}
	var b strings.Builder
	for i, l := range s.upcoming {
		b.WriteString(fmt.Sprintf("%d. %s\n", s.pos.LessonIndex+i+2, l.Title))
		b.WriteString(theme.Subtitle.Render("   "+l.Module) + "\n")
	}
	return components.Card("Next lessons", strings.TrimRight(b.String(), "\n"), cw)
}
