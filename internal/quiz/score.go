package quiz

import (
	"context"
	"fmt"

	"github.com/abhisek/edulearn/internal/progress"
)

// Mode identifies who computed a result.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Result is the outcome of a scored submission.
type Result struct {
	Score      int // points earned
	Total      int // points possible; 0 when the scorer does not report it
	Percentage int // 0-100
	Passed     bool
	Mode       Mode
}

// Scorer turns a full answer sequence into a Result. answers has one entry
// per question, with Unanswered for skipped questions.
type Scorer interface {
	Score(ctx context.Context, q Quiz, answers []int) (Result, error)
}

// Percent returns round(100*earned/possible) rounding halves up. It is 0
// when possible is 0.
func Percent(earned, possible int) int {
	return progress.Percent(earned, possible)
}

// LocalScorer scores against the correct indices shipped with the quiz.
type LocalScorer struct{}

func (LocalScorer) Score(_ context.Context, q Quiz, answers []int) (Result, error) {
	if len(answers) != len(q.Questions) {
		return Result{}, fmt.Errorf("got %d answers for %d questions", len(answers), len(q.Questions))
	}
	var earned, possible int
	for i, question := range q.Questions {
		w := question.Weight()
		possible += w
		if answers[i] == question.CorrectIndex {
			earned += w
		}
	}
	pct := Percent(earned, possible)
	return Result{
		Score:      earned,
		Total:      possible,
		Percentage: pct,
		Passed:     pct >= q.Passing(),
		Mode:       ModeLocal,
	}, nil
}

// Submitter sends answers to the scoring service. The returned result is
// adopted as-is.
type Submitter interface {
	SubmitQuiz(ctx context.Context, quizID string, answers []int) (Result, error)
}

// RemoteScorer delegates scoring to a Submitter and never recomputes the
// score locally.
type RemoteScorer struct {
	Submitter Submitter
}

func (s RemoteScorer) Score(ctx context.Context, q Quiz, answers []int) (Result, error) {
	if q.ID == "" {
		return Result{}, fmt.Errorf("quiz %q has no server id", q.Title)
	}
	res, err := s.Submitter.SubmitQuiz(ctx, q.ID, answers)
	if err != nil {
		return Result{}, err
	}
	res.Mode = ModeRemote
	return res, nil
}

// RoutedScorer sends quizzes that came from the server to Remote and
// grades everything else with Local.
type RoutedScorer struct {
	Remote Scorer
	Local  Scorer
}

func (s RoutedScorer) Score(ctx context.Context, q Quiz, answers []int) (Result, error) {
	if q.ID != "" && s.Remote != nil {
		return s.Remote.Score(ctx, q, answers)
	}
	local := s.Local
	if local == nil {
		local = LocalScorer{}
	}
	return local.Score(ctx, q, answers)
}
