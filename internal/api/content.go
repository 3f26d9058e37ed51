package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/abhisek/edulearn/internal/quiz"
)

type lessonsEnvelope struct {
	Data struct {
		Lessons []wireLesson `json:"lessons"`
	} `json:"data"`
}

type quizzesEnvelope struct {
	Data struct {
		Quizzes []wireQuiz `json:"quizzes"`
	} `json:"data"`
}

type quizEnvelope struct {
	Data struct {
		Quiz wireQuiz `json:"quiz"`
	} `json:"data"`
}

type submitEnvelope struct {
	Data struct {
		Result wireResult `json:"result"`
	} `json:"data"`
}

type analyticsEnvelope struct {
	Data struct {
		Analytics []wireAnalytics `json:"analytics"`
	} `json:"data"`
}

type attemptsEnvelope struct {
	Data struct {
		Attempts []wireAttempt `json:"attempts"`
	} `json:"data"`
}

type statsEnvelope struct {
	LearnerStats
	Data *LearnerStats `json:"data"`
}

type submitAnswer struct {
	SelectedOptionIndex int `json:"selectedOptionIndex"`
}

// ListLessons returns every lesson visible to the caller.
func (c *Client) ListLessons(ctx context.Context) ([]Lesson, error) {
	var env lessonsEnvelope
	if err := c.call(ctx, http.MethodGet, "/lessons", nil, "", nil, &env); err != nil {
		return nil, err
	}
	out := make([]Lesson, len(env.Data.Lessons))
	for i, w := range env.Data.Lessons {
		out[i] = normalizeLesson(w)
	}
	return out, nil
}

// ListQuizzes returns every quiz visible to the caller.
func (c *Client) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	var env quizzesEnvelope
	if err := c.call(ctx, http.MethodGet, "/quizzes", nil, "quiz-list", quizListSchema, &env); err != nil {
		return nil, err
	}
	out := make([]Quiz, len(env.Data.Quizzes))
	for i, w := range env.Data.Quizzes {
		out[i] = normalizeQuiz(w)
	}
	return out, nil
}

// SubmitQuiz sends the full answer sequence, Unanswered entries included,
// and returns the server's score. It satisfies quiz.Submitter.
func (c *Client) SubmitQuiz(ctx context.Context, quizID string, answers []int) (quiz.Result, error) {
	payload := struct {
		Answers []submitAnswer `json:"answers"`
	}{Answers: make([]submitAnswer, len(answers))}
	for i, a := range answers {
		payload.Answers[i] = submitAnswer{SelectedOptionIndex: a}
	}

	var env submitEnvelope
	path := "/quizzes/" + url.PathEscape(quizID) + "/submit"
	if err := c.call(ctx, http.MethodPost, path, payload, "submit", submitSchema, &env); err != nil {
		return quiz.Result{}, err
	}
	return toResult(env.Data.Result), nil
}

// QuizAnalytics returns per-quiz attempt statistics.
func (c *Client) QuizAnalytics(ctx context.Context) ([]QuizAnalytics, error) {
	var env analyticsEnvelope
	if err := c.call(ctx, http.MethodGet, "/quizzes/analytics", nil, "", nil, &env); err != nil {
		return nil, err
	}
	out := make([]QuizAnalytics, len(env.Data.Analytics))
	for i, w := range env.Data.Analytics {
		out[i] = normalizeAnalytics(w)
	}
	return out, nil
}

// LearnerStats returns the signed-in learner's dashboard figures. The
// payload is accepted either bare or wrapped in "data".
func (c *Client) LearnerStats(ctx context.Context) (LearnerStats, error) {
	var env statsEnvelope
	if err := c.call(ctx, http.MethodGet, "/learners/me/stats", nil, "", nil, &env); err != nil {
		return LearnerStats{}, err
	}
	if env.Data != nil {
		return *env.Data, nil
	}
	return env.LearnerStats, nil
}

// QuizAttempts lists recorded attempts across learners. Admin only.
func (c *Client) QuizAttempts(ctx context.Context) ([]Attempt, error) {
	var env attemptsEnvelope
	if err := c.call(ctx, http.MethodGet, "/admin/quiz-attempts", nil, "", nil, &env); err != nil {
		return nil, err
	}
	out := make([]Attempt, len(env.Data.Attempts))
	for i, w := range env.Data.Attempts {
		out[i] = normalizeAttempt(w)
	}
	return out, nil
}

var _ quiz.Submitter = (*Client)(nil)
