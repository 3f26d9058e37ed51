package quiz

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/edulearn/internal/progress"
)

var (
	// ErrNotOpen is returned when an operation needs an open session.
	ErrNotOpen = errors.New("quiz: no open session")

	// ErrInvalidAnswer is returned for out-of-range question or option indices.
	ErrInvalidAnswer = errors.New("quiz: invalid answer")

	// ErrSubmitting is returned when a submit is already in flight.
	ErrSubmitting = errors.New("quiz: submission in progress")
)

// Phase is the lifecycle position of the active session.
type Phase int

const (
	PhaseClosed    Phase = iota // No quiz open
	PhaseOpen                   // Recording answers
	PhaseSubmitted              // Scored, feedback visible
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpen:
		return "open"
	case PhaseSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Ticket identifies one in-flight submission. It carries a snapshot of the
// quiz and answers so scoring can run off the UI loop.
type Ticket struct {
	Quiz    Quiz
	Answers []int

	generation uint64
}

// QuestionFeedback is the post-submit view of a single question.
type QuestionFeedback struct {
	Question    Question
	Selected    int // Unanswered when skipped
	Correct     bool
	CorrectText string
}

// Config wires a Machine to its collaborators.
type Config struct {
	Store *progress.Store
	// StoreKey is the progress record the machine writes scores to.
	StoreKey string
	Scorer   Scorer
	Logger   *zap.Logger

	// OnSubmitted runs after a result has been applied and persisted.
	OnSubmitted func(q Quiz, res Result)
}

// Machine owns the single active quiz session. It is not safe for
// concurrent use; async scoring goes through BeginSubmit and Complete.
type Machine struct {
	cfg Config
	log *zap.Logger

	generation uint64
	phase      Phase
	quiz       Quiz
	answers    map[int]int
	result     *Result
	feedback   bool
	submitting bool
	lastErr    error
}

// NewMachine creates a Machine in the closed phase.
func NewMachine(cfg Config) *Machine {
	if cfg.Scorer == nil {
		cfg.Scorer = LocalScorer{}
	}
	if cfg.StoreKey == "" {
		cfg.StoreKey = progress.QuizzesKey
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{cfg: cfg, log: log}
}

// Open starts a fresh session for q, replacing any active one. Callers
// only offer unlocked quizzes; the machine does not re-check gating.
func (m *Machine) Open(q Quiz) {
	m.generation++
	m.phase = PhaseOpen
	m.quiz = q
	m.answers = make(map[int]int)
	m.result = nil
	m.feedback = false
	m.submitting = false
	m.lastErr = nil
}

// Close discards the active session without touching progress.
func (m *Machine) Close() {
	m.generation++
	m.phase = PhaseClosed
	m.quiz = Quiz{}
	m.answers = nil
	m.result = nil
	m.feedback = false
	m.submitting = false
	m.lastErr = nil
}

// Select records option as the answer to question, overwriting any earlier
// choice.
func (m *Machine) Select(question, option int) error {
	if m.phase != PhaseOpen {
		return ErrNotOpen
	}
	if question < 0 || question >= len(m.quiz.Questions) {
		return fmt.Errorf("%w: question %d", ErrInvalidAnswer, question)
	}
	if option < 0 || option >= len(m.quiz.Questions[question].Options) {
		return fmt.Errorf("%w: option %d for question %d", ErrInvalidAnswer, option, question)
	}
	m.answers[question] = option
	return nil
}

// Selected returns the recorded answer for question.
func (m *Machine) Selected(question int) (int, bool) {
	opt, ok := m.answers[question]
	return opt, ok
}

// Answers returns one entry per question, Unanswered where nothing was
// selected.
func (m *Machine) Answers() []int {
	out := make([]int, len(m.quiz.Questions))
	for i := range out {
		if opt, ok := m.answers[i]; ok {
			out[i] = opt
		} else {
			out[i] = Unanswered
		}
	}
	return out
}

// AnsweredCount returns the number of questions with a selection.
func (m *Machine) AnsweredCount() int { return len(m.answers) }

// BeginSubmit marks the session as submitting and returns a ticket for the
// scoring call.
func (m *Machine) BeginSubmit() (Ticket, error) {
	if m.phase != PhaseOpen {
		return Ticket{}, ErrNotOpen
	}
	if m.submitting {
		return Ticket{}, ErrSubmitting
	}
	m.submitting = true
	m.lastErr = nil
	return Ticket{
		Quiz:       m.quiz,
		Answers:    m.Answers(),
		generation: m.generation,
	}, nil
}

// Current reports whether t belongs to the active session.
func (m *Machine) Current(t Ticket) bool {
	return t.generation == m.generation && m.phase == PhaseOpen && m.submitting
}

// Complete applies the outcome of a scoring call. It returns false when
// the ticket is stale (the quiz was closed or another quiz opened since)
// and the outcome was dropped. A scoring error keeps the session open so
// the learner can retry.
func (m *Machine) Complete(ctx context.Context, t Ticket, res Result, err error) bool {
	if !m.Current(t) {
		m.log.Debug("dropping stale quiz result",
			zap.String("quiz", t.Quiz.Key), zap.Uint64("generation", t.generation))
		return false
	}
	m.submitting = false

	if err != nil {
		m.lastErr = err
		m.log.Warn("quiz submit failed", zap.String("quiz", t.Quiz.Key), zap.Error(err))
		return true
	}

	m.phase = PhaseSubmitted
	m.feedback = true
	m.result = &res

	if m.cfg.Store != nil {
		rec := m.cfg.Store.Load(ctx, m.cfg.StoreKey)
		rec.SetScore(m.quiz.Key, res.Percentage)
		m.cfg.Store.Save(ctx, m.cfg.StoreKey, rec)
	}

	if m.cfg.OnSubmitted != nil {
		m.cfg.OnSubmitted(m.quiz, res)
	}
	return true
}

// Submit scores the session synchronously.
func (m *Machine) Submit(ctx context.Context) (Result, error) {
	t, err := m.BeginSubmit()
	if err != nil {
		return Result{}, err
	}
	res, err := m.cfg.Scorer.Score(ctx, t.Quiz, t.Answers)
	m.Complete(ctx, t, res, err)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Score runs the configured scorer for a ticket. It touches no machine
// state, so it may run on another goroutine.
func (m *Machine) Score(ctx context.Context, t Ticket) (Result, error) {
	return m.cfg.Scorer.Score(ctx, t.Quiz, t.Answers)
}

// Feedback returns per-question correctness once the result is visible,
// and nil before that.
func (m *Machine) Feedback() []QuestionFeedback {
	if !m.feedback {
		return nil
	}
	out := make([]QuestionFeedback, len(m.quiz.Questions))
	for i, q := range m.quiz.Questions {
		selected := Unanswered
		if opt, ok := m.answers[i]; ok {
			selected = opt
		}
		fb := QuestionFeedback{
			Question: q,
			Selected: selected,
			Correct:  selected == q.CorrectIndex,
		}
		if q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options) {
			fb.CorrectText = q.Options[q.CorrectIndex]
		}
		out[i] = fb
	}
	return out
}

func (m *Machine) Phase() Phase          { return m.phase }
func (m *Machine) Quiz() Quiz            { return m.quiz }
func (m *Machine) Submitting() bool      { return m.submitting }
func (m *Machine) LastError() error      { return m.lastErr }
func (m *Machine) FeedbackVisible() bool { return m.feedback }

// Result returns the applied result, if any.
func (m *Machine) Result() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}
