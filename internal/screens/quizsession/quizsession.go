// Package quizsession is the screen for taking one quiz.
package quizsession

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/quiz"
	"github.com/abhisek/edulearn/internal/router"
	"github.com/abhisek/edulearn/internal/screen"
	"github.com/abhisek/edulearn/internal/ui/components"
	"github.com/abhisek/edulearn/internal/ui/layout"
	"github.com/abhisek/edulearn/internal/ui/theme"
)

// submitResultMsg carries the outcome of an async scoring call back to the
// UI loop.
type submitResultMsg struct {
	Ticket quiz.Ticket
	Result quiz.Result
	Err    error
}

// QuizSessionScreen drives a quiz.Machine for one quiz.
type QuizSessionScreen struct {
	svc      *screen.Services
	machine  *quiz.Machine
	quiz     quiz.Quiz
	question int
	cursor   int
}

var _ screen.Screen = (*QuizSessionScreen)(nil)
var _ screen.KeyHintProvider = (*QuizSessionScreen)(nil)
var _ screen.Closer = (*QuizSessionScreen)(nil)

// New creates a session screen for q. The quiz opens when the screen is
// pushed.
func New(svc *screen.Services, q quiz.Quiz) *QuizSessionScreen {
	return &QuizSessionScreen{svc: svc, machine: svc.Quiz, quiz: q}
}

func (s *QuizSessionScreen) Init() tea.Cmd {
	s.machine.Open(s.quiz)
	s.question = 0
	s.cursor = 0
	return nil
}

// Close discards the session when the screen leaves the stack. A result
// still in flight is dropped when it arrives.
func (s *QuizSessionScreen) Close() {
	if s.machine.Quiz().Key == s.quiz.Key {
		s.machine.Close()
	}
}

func (s *QuizSessionScreen) Title() string {
	return s.quiz.Title
}

func (s *QuizSessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.machine.Phase() == quiz.PhaseSubmitted:
		return []layout.KeyHint{
			{Key: "r", Description: "Retake"},
			{Key: "Esc", Description: "Back to quizzes"},
		}
	case s.machine.Submitting():
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Option"},
		{Key: "Enter", Description: "Choose"},
		{Key: "←→", Description: "Question"},
		{Key: "s", Description: "Submit"},
		{Key: "Esc", Description: "Close"},
	}
}

func (s *QuizSessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case submitResultMsg:
		s.machine.Complete(context.Background(), msg.Ticket, msg.Result, msg.Err)
		return s, nil
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizSessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.machine.Phase() {
	case quiz.PhaseSubmitted:
		switch key {
		case "r", "R":
			return s, s.Init()
		case "enter", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	case quiz.PhaseClosed:
		return s, nil
	}

	if s.machine.Submitting() {
		return s, nil
	}

	questions := s.quiz.Questions
	if len(questions) == 0 {
		return s, nil
	}
	options := questions[s.question].Options

	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(options)-1 {
			s.cursor++
		}
	case "enter", "space":
		s.choose(s.cursor)
	case "left", "h", "shift+tab":
		s.gotoQuestion(s.question - 1)
	case "right", "l", "tab":
		s.gotoQuestion(s.question + 1)
	case "s", "S":
		return s, s.submit()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if opt := int(key[0] - '1'); opt < len(options) {
				s.cursor = opt
				s.choose(opt)
			}
		}
	}
	return s, nil
}

func (s *QuizSessionScreen) choose(option int) {
	if err := s.machine.Select(s.question, option); err != nil {
		s.svc.Log().Debug("ignored selection", zap.Error(err))
	}
}

func (s *QuizSessionScreen) gotoQuestion(i int) {
	if i < 0 || i >= len(s.quiz.Questions) {
		return
	}
	s.question = i
	if opt, ok := s.machine.Selected(i); ok {
		s.cursor = opt
	} else {
		s.cursor = 0
	}
}

// submit starts scoring off the UI loop. The ticket ties the result back
// to this session.
func (s *QuizSessionScreen) submit() tea.Cmd {
	ticket, err := s.machine.BeginSubmit()
	if err != nil {
		return nil
	}
	m := s.machine
	return func() tea.Msg {
		res, err := m.Score(context.Background(), ticket)
		return submitResultMsg{Ticket: ticket, Result: res, Err: err}
	}
}

func (s *QuizSessionScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if s.machine.Phase() == quiz.PhaseSubmitted {
		return components.Center(s.renderFeedback(cw), width)
	}
	if len(s.quiz.Questions) == 0 {
		return components.Message("This quiz has no questions.", width)
	}

	var b strings.Builder
	total := len(s.quiz.Questions)

	info := fmt.Sprintf("Question %d of %d   Answered %d/%d   Pass mark %d%%",
		s.question+1, total, s.machine.AnsweredCount(), total, s.quiz.Passing())
	b.WriteString(theme.Subtitle.Render(info))
	b.WriteString("\n")
	b.WriteString(s.renderDots())
	b.WriteString("\n\n")

	q := s.quiz.Questions[s.question]
	chosen := -1
	if opt, ok := s.machine.Selected(s.question); ok {
		chosen = opt
	}
	b.WriteString(components.Choices{
		Question: q.Text,
		Options:  q.Options,
		Cursor:   s.cursor,
		Chosen:   chosen,
	}.View())
	b.WriteString("\n")

	switch {
	case s.machine.Submitting():
		b.WriteString(theme.Hint.Render("Submitting..."))
	case s.machine.LastError() != nil:
		b.WriteString(theme.ErrorText.Render(
			"Submit failed: " + api.Message(s.machine.LastError(), api.DefaultErrorMessage)))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Press s to try again."))
	case s.machine.AnsweredCount() < total:
		b.WriteString(theme.Hint.Render("Unanswered questions count as wrong."))
	}

	title := s.quiz.Title
	if s.quiz.LessonTitle != "" {
		title += "  ·  " + s.quiz.LessonTitle
	}
	return components.Center(components.Card(title, b.String(), cw), width)
}

// renderDots shows one marker per question: answered, current, open.
func (s *QuizSessionScreen) renderDots() string {
	var b strings.Builder
	for i := range s.quiz.Questions {
		_, answered := s.machine.Selected(i)
		switch {
		case i == s.question:
			b.WriteString(theme.Selected.Render("◆"))
		case answered:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render("●"))
		default:
			b.WriteString(theme.Locked.Render("○"))
		}
		b.WriteString(" ")
	}
	return b.String()
}

func (s *QuizSessionScreen) renderFeedback(cw int) string {
	res, _ := s.machine.Result()

	var b strings.Builder
	verdict := theme.Incorrect.Render("Not passed")
	if res.Passed {
		verdict = theme.Correct.Render("Passed")
	}
	b.WriteString(verdict + "   ")
	if res.Total > 0 {
		b.WriteString(fmt.Sprintf("%d/%d points   ", res.Score, res.Total))
	}
	b.WriteString(fmt.Sprintf("%d%%\n", res.Percentage))
	mode := "graded locally"
	if res.Mode == quiz.ModeRemote {
		mode = "graded by server"
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Pass mark %d%%, %s", s.quiz.Passing(), mode)))
	b.WriteString("\n\n")

	for i, fb := range s.machine.Feedback() {
		mark := theme.Correct.Render("✓")
		if !fb.Correct {
			mark = theme.Incorrect.Render("✗")
		}
		b.WriteString(fmt.Sprintf("%s %d. %s\n", mark, i+1, fb.Question.Text))
		if !fb.Correct {
			yours := "no answer"
			if fb.Selected >= 0 && fb.Selected < len(fb.Question.Options) {
				yours = fb.Question.Options[fb.Selected]
			}
			b.WriteString(theme.Subtitle.Render(fmt.Sprintf("     Your answer: %s   Correct: %s", yours, fb.CorrectText)))
			b.WriteString("\n")
		}
	}
	return components.Card("Results: "+s.quiz.Title, b.String(), cw)
}
