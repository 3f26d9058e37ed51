package quizsession

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edulearn/internal/kv"
	"github.com/abhisek/edulearn/internal/progress"
	"github.com/abhisek/edulearn/internal/quiz"
	"github.com/abhisek/edulearn/internal/router"
	"github.com/abhisek/edulearn/internal/screen"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

type failingScorer struct{ calls int }

func (f *failingScorer) Score(context.Context, quiz.Quiz, []int) (quiz.Result, error) {
	f.calls++
	return quiz.Result{}, errors.New("connection refused")
}

func testQuiz() quiz.Quiz {
	return quiz.Quiz{
		Key:      "web:0",
		CourseID: "web",
		Title:    "HTML Basics Quiz",
		Questions: []quiz.Question{
			{Text: "HTML stands for?", Options: []string{"HyperText Markup Language", "High Text", "Hyper Tool"}, CorrectIndex: 0},
			{Text: "Largest heading?", Options: []string{"<h6>", "<h1>", "<head>"}, CorrectIndex: 1},
			{Text: "Line break tag?", Options: []string{"<br>", "<lb>", "<break>"}, CorrectIndex: 0},
		},
	}
}

func testServices(scorer quiz.Scorer) *screen.Services {
	store := progress.NewStore(kv.NewMemory(), nil)
	return &screen.Services{
		Progress: store,
		Quiz:     quiz.NewMachine(quiz.Config{Store: store, Scorer: scorer}),
	}
}

func newTestScreen(t *testing.T, scorer quiz.Scorer) (*QuizSessionScreen, *screen.Services) {
	t.Helper()
	svc := testServices(scorer)
	s := New(svc, testQuiz())
	s.Init()
	return s, svc
}

// run executes cmd and feeds its message back into the screen.
func run(s *QuizSessionScreen, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	s.Update(cmd())
}

func TestInitOpensQuiz(t *testing.T) {
	s, svc := newTestScreen(t, nil)
	if svc.Quiz.Phase() != quiz.PhaseOpen {
		t.Fatalf("expected open phase, got %v", svc.Quiz.Phase())
	}
	if !strings.Contains(s.View(100, 30), "HTML stands for?") {
		t.Error("expected first question in view")
	}
}

func TestAnswerAndSubmit(t *testing.T) {
	s, svc := newTestScreen(t, nil)

	// Two of three correct: A, B, then a wrong B.
	s.Update(keyPress('1'))
	s.Update(specialKey(tea.KeyRight))
	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyEnter))
	s.Update(specialKey(tea.KeyRight))
	s.Update(keyPress('2'))

	if got := svc.Quiz.AnsweredCount(); got != 3 {
		t.Fatalf("expected 3 answers, got %d", got)
	}

	_, cmd := s.Update(keyPress('s'))
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	if !svc.Quiz.Submitting() {
		t.Error("expected submitting while the command is in flight")
	}
	run(s, cmd)

	if svc.Quiz.Phase() != quiz.PhaseSubmitted {
		t.Fatalf("expected submitted phase, got %v", svc.Quiz.Phase())
	}
	score, ok := svc.QuizRecord(context.Background()).Score("web:0")
	if !ok || score != 67 {
		t.Errorf("expected stored score 67, got %d (ok=%v)", score, ok)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "67%") || !strings.Contains(view, "Not passed") {
		t.Errorf("expected result in view, got:\n%s", view)
	}
}

func TestSelectionOverwrites(t *testing.T) {
	s, svc := newTestScreen(t, nil)
	s.Update(keyPress('2'))
	s.Update(keyPress('1'))

	opt, _ := svc.Quiz.Selected(0)
	if opt != 0 {
		t.Errorf("expected last selection 0, got %d", opt)
	}
}

func TestNavigationRestoresCursor(t *testing.T) {
	s, _ := newTestScreen(t, nil)
	s.Update(keyPress('3'))
	s.Update(specialKey(tea.KeyRight))
	if s.cursor != 0 {
		t.Errorf("unanswered question should start at cursor 0, got %d", s.cursor)
	}
	s.Update(specialKey(tea.KeyLeft))
	if s.cursor != 2 {
		t.Errorf("expected cursor on chosen option 2, got %d", s.cursor)
	}
	s.Update(specialKey(tea.KeyLeft))
	if s.question != 0 {
		t.Errorf("left on first question should stay, got %d", s.question)
	}
}

func TestCloseDropsInFlightResult(t *testing.T) {
	s, svc := newTestScreen(t, nil)
	s.Update(keyPress('1'))
	_, cmd := s.Update(keyPress('s'))
	if cmd == nil {
		t.Fatal("expected submit command")
	}

	s.Close() // learner left while scoring

	run(s, cmd)
	if svc.Quiz.Phase() != quiz.PhaseClosed {
		t.Errorf("expected closed phase, got %v", svc.Quiz.Phase())
	}
	if _, ok := svc.QuizRecord(context.Background()).Score("web:0"); ok {
		t.Error("stale result must not be persisted")
	}
}

func TestSubmitErrorAllowsRetry(t *testing.T) {
	scorer := &failingScorer{}
	s, svc := newTestScreen(t, scorer)
	s.Update(keyPress('1'))

	_, cmd := s.Update(keyPress('s'))
	run(s, cmd)

	if svc.Quiz.Phase() != quiz.PhaseOpen {
		t.Fatalf("expected open after failure, got %v", svc.Quiz.Phase())
	}
	if opt, _ := svc.Quiz.Selected(0); opt != 0 {
		t.Error("answers should survive a failed submit")
	}
	if !strings.Contains(s.View(100, 30), "try again") {
		t.Error("expected retry hint in view")
	}

	_, cmd = s.Update(keyPress('s'))
	run(s, cmd)
	if scorer.calls != 2 {
		t.Errorf("expected 2 scoring calls, got %d", scorer.calls)
	}
}

func TestKeysIgnoredWhileSubmitting(t *testing.T) {
	s, svc := newTestScreen(t, nil)
	_, cmd := s.Update(keyPress('s'))
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	_, second := s.Update(keyPress('s'))
	if second != nil {
		t.Error("second submit while in flight should be ignored")
	}
	s.Update(keyPress('2'))
	if _, ok := svc.Quiz.Selected(0); ok {
		t.Error("selection while submitting should be ignored")
	}
}

func TestRetakeResetsAnswers(t *testing.T) {
	s, svc := newTestScreen(t, nil)
	s.Update(keyPress('1'))
	_, cmd := s.Update(keyPress('s'))
	run(s, cmd)

	s.Update(keyPress('r'))

	if svc.Quiz.Phase() != quiz.PhaseOpen {
		t.Fatalf("expected open after retake, got %v", svc.Quiz.Phase())
	}
	if svc.Quiz.AnsweredCount() != 0 {
		t.Error("retake should start with no answers")
	}
}

func TestEnterAfterSubmitPops(t *testing.T) {
	s, _ := newTestScreen(t, nil)
	_, cmd := s.Update(keyPress('s'))
	run(s, cmd)

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

type fixedScorer struct{ res quiz.Result }

func (f fixedScorer) Score(context.Context, quiz.Quiz, []int) (quiz.Result, error) {
	return f.res, nil
}

func TestServerResultWithoutTotalHidesPoints(t *testing.T) {
	s, _ := newTestScreen(t, fixedScorer{res: quiz.Result{Score: 2, Percentage: 67, Mode: quiz.ModeRemote}})
	s.Update(keyPress('1'))
	_, cmd := s.Update(keyPress('s'))
	run(s, cmd)

	view := s.View(100, 30)
	if strings.Contains(view, "/0 points") {
		t.Errorf("server result without a total must not show points, got:\n%s", view)
	}
	if !strings.Contains(view, "67%") {
		t.Errorf("expected percentage in view, got:\n%s", view)
	}
}
