package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/edulearn/internal/quiz"
)

type staticToken string

func (s staticToken) Token(context.Context) string { return string(s) }

func testClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/api/v1"
	cfg.Retry.InitialWait = time.Millisecond
	cfg.Retry.MaxWait = 5 * time.Millisecond

	c, err := New(cfg, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestLogin(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])
		assert.Equal(t, "hunter22", body["password"])

		writeJSON(w, 200, `{"token":"tok-1","data":{"user":{"_id":"u1","name":"Ada","email":"Ada@Example.com","role":"learner"}}}`)
	}))

	sess, err := c.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: RoleLearner}, sess.User)
}

func TestLogin_MissingTokenIsInvalid(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":{"user":{}}}`)
	}))

	_, err := c.Login(context.Background(), "a@b.co", "x")
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestBearerToken(t *testing.T) {
	var got string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, 200, `{"data":{"user":{"id":"u2","role":"admin"}}}`)
	}), WithTokenSource(staticToken("abc")))

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)
	assert.Equal(t, "u2", u.ID)
	assert.Equal(t, RoleAdmin, u.Role)
}

func TestNoTokenNoHeader(t *testing.T) {
	var got string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, 200, `{"data":{"lessons":[]}}`)
	}), WithTokenSource(staticToken("")))

	_, err := c.ListLessons(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", 401, `{"message":"Please log in"}`, "Please log in"},
		{"error field", 400, `{"error":"Bad email"}`, "Bad email"},
		{"message wins", 400, `{"message":"first","error":"second"}`, "first"},
		{"no json", 500, `oops`, DefaultErrorMessage},
		{"empty object", 404, `{}`, DefaultErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			c.http.Transport = http.DefaultTransport // no retries for 500

			_, err := c.Me(context.Background())
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, tt.status, StatusOf(err))
		})
	}
}

func TestNoContent(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, c.Logout(context.Background()))
}

func TestResetPassword(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/auth/reset-password/abc123", r.URL.Path)
		writeJSON(w, 200, `{"message":"Password updated"}`)
	}))

	msg, err := c.ResetPassword(context.Background(), "abc123", "newpassword")
	require.NoError(t, err)
	assert.Equal(t, "Password updated", msg)
}

func TestListLessons_Normalizes(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":{"lessons":[
			{"_id":"l1","title":"Intro","category":"SQL","content":"...","images":["a.png"]},
			{"id":"l2","title":"Other"}
		]}}`)
	}))

	lessons, err := c.ListLessons(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "l1", lessons[0].ID)
	assert.Equal(t, "SQL", lessons[0].Category)
	assert.Equal(t, "l2", lessons[1].ID)
	assert.Equal(t, "General", lessons[1].Category)
	assert.NotNil(t, lessons[1].Images)
}

func TestListQuizzes_Normalizes(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":{"quizzes":[
			{"_id":"q1","title":"MySQL Basics Quiz","lesson":{"_id":"l1","title":"Intro to SQL"},"passingScore":80,
			 "questions":[{"questionText":"Reads data?","options":["SELECT","DROP"],"correctOptionIndex":0,"points":2}]},
			{"_id":"q2","title":"Python Quiz","lesson":"l2","isActive":false,
			 "questions":[{"questionText":"Prints?","options":["print()","echo()"],"correctOptionIndex":0}]},
			{"_id":"q3","title":"Empty","lesson":null}
		]}}`)
	}))

	qs, err := c.ListQuizzes(context.Background())
	require.NoError(t, err)
	require.Len(t, qs, 3)

	assert.Equal(t, RefPopulated, qs[0].Lesson.Kind)
	assert.Equal(t, "Intro to SQL", qs[0].Lesson.DisplayTitle())
	assert.Equal(t, 80, qs[0].PassingScore)
	assert.Equal(t, 2, qs[0].Questions[0].Points)
	assert.True(t, qs[0].IsActive)

	assert.Equal(t, RefID, qs[1].Lesson.Kind)
	assert.Equal(t, "l2", qs[1].Lesson.ID)
	assert.Equal(t, "Lesson", qs[1].Lesson.DisplayTitle())
	assert.Equal(t, quiz.DefaultPassingScore, qs[1].PassingScore)
	assert.Equal(t, 1, qs[1].Questions[0].Points)
	assert.False(t, qs[1].IsActive)

	assert.Equal(t, RefNone, qs[2].Lesson.Kind)
	assert.NotNil(t, qs[2].Questions)

	session := qs[0].ForSession()
	assert.Equal(t, "q1", session.ID)
	assert.Equal(t, "q1", session.Key)
	assert.Equal(t, "Intro to SQL", session.LessonTitle)
	assert.NoError(t, session.Validate())
}

func TestListQuizzes_SchemaViolation(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":{"quizzes":[{"title":"Bad","questions":[{"options":["a"],"correctOptionIndex":"zero"}]}]}}`)
	}))

	_, err := c.ListQuizzes(context.Background())
	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "GET /quizzes", inv.Endpoint)
}

func TestCreateQuiz(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/quizzes", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "l9", body["lesson"])
		assert.Equal(t, "SQL Joins", body["title"])
		assert.Equal(t, true, body["isActive"])
		questions := body["questions"].([]any)
		require.Len(t, questions, 1)
		q := questions[0].(map[string]any)
		assert.Equal(t, "Combines rows?", q["questionText"])
		assert.EqualValues(t, 1, q["correctOptionIndex"])

		writeJSON(w, 201, `{"data":{"quiz":{"_id":"q9","title":"SQL Joins","lesson":"l9","passingScore":70,
			"questions":[{"questionText":"Combines rows?","options":["WHERE","JOIN"],"correctOptionIndex":1,"points":1}]}}}`)
	}))

	q, err := c.CreateQuiz(context.Background(), QuizDraft{
		Lesson: "l9", Title: "SQL Joins", PassingScore: 70, IsActive: true,
		Questions: []QuestionDraft{{QuestionText: "Combines rows?", Options: []string{"WHERE", "JOIN"}, CorrectOptionIndex: 1, Points: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "q9", q.ID)
	assert.Equal(t, "l9", q.Lesson.ID)
	require.Len(t, q.Questions, 1)
}

func TestCreateQuiz_Forbidden(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 403, `{"message":"Only instructors can create quizzes"}`)
	}))

	_, err := c.CreateQuiz(context.Background(), QuizDraft{Title: "T"})
	require.Error(t, err)
	assert.Equal(t, "Only instructors can create quizzes", Message(err, "failed"))
}

func TestSubmitQuiz(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/quizzes/q1/submit", r.URL.Path)

		var body struct {
			Answers []struct {
				SelectedOptionIndex int `json:"selectedOptionIndex"`
			} `json:"answers"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Answers, 3)
		assert.Equal(t, 0, body.Answers[0].SelectedOptionIndex)
		assert.Equal(t, quiz.Unanswered, body.Answers[2].SelectedOptionIndex)

		writeJSON(w, 200, `{"data":{"result":{"score":2,"percentage":66.67,"passed":false}}}`)
	}))

	res, err := c.SubmitQuiz(context.Background(), "q1", []int{0, 1, quiz.Unanswered})
	require.NoError(t, err)
	assert.Equal(t, quiz.Result{Score: 2, Percentage: 67, Passed: false, Mode: quiz.ModeRemote}, res)
}

func TestSubmitQuiz_NotRetried(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, 503, `{"message":"try later"}`)
	}))

	_, err := c.SubmitQuiz(context.Background(), "q1", []int{0})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetry_GETOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, 502, `{}`)
			return
		}
		writeJSON(w, 200, `{"data":{"lessons":[{"_id":"l1","title":"x"}]}}`)
	}))

	lessons, err := c.ListLessons(context.Background())
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetry_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, 401, `{"message":"Please log in"}`)
	}))

	_, err := c.ListQuizzes(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Unauthorized())
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetry_GivesUp(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, 500, `{"message":"down"}`)
	}))

	_, err := c.ListLessons(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "down", apiErr.Message)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.Retry.MaxAttempts = 1
	c, err := New(cfg)
	require.NoError(t, err)

	_, err = c.ListLessons(context.Background())
	var te *ErrTransport
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, "fallback", Message(err, "fallback"))
}

func TestLearnerStats_BareAndWrapped(t *testing.T) {
	for name, body := range map[string]string{
		"bare":    `{"totalLessons":10,"completedLessons":4,"quizzesPassed":2,"totalQuizAttempts":3,"successRate":66.7}`,
		"wrapped": `{"data":{"totalLessons":10,"completedLessons":4,"quizzesPassed":2,"totalQuizAttempts":3,"successRate":66.7}}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, body)
			}))
			stats, err := c.LearnerStats(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 10, stats.TotalLessons)
			assert.Equal(t, 4, stats.CompletedLessons)
			assert.InDelta(t, 66.7, stats.SuccessRate, 0.001)
		})
	}
}

func TestQuizAnalytics(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":{"analytics":[
			{"quiz":{"_id":"q1","title":"MySQL Basics Quiz"},"totalAttempts":4,"averageScore":72.5,"passRate":50},
			{"quizId":"q2","title":"Python","attempts":1,"averagePercentage":100,"passRate":100}
		]}}`)
	}))

	rows, err := c.QuizAnalytics(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, QuizAnalytics{QuizID: "q1", Title: "MySQL Basics Quiz", Attempts: 4, AveragePercentage: 73, PassRate: 50}, rows[0])
	assert.Equal(t, "q2", rows[1].QuizID)
}

func TestQuizAttempts(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":{"attempts":[
			{"_id":"a1","quiz":"q1","user":{"_id":"u2","name":"Ada"},"score":8,"percentage":80,"passed":true,"submittedAt":"2026-02-04"}
		]}}`)
	}))

	attempts, err := c.QuizAttempts(context.Background())
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	a := attempts[0]
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, "q1", a.QuizID)
	assert.Equal(t, "u2", a.UserID)
	assert.Equal(t, 80, a.Percentage)
	assert.Equal(t, time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC), a.SubmittedAt)
}

func TestLessonRef_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want LessonRef
	}{
		{`null`, LessonRef{}},
		{`"l1"`, LessonRef{Kind: RefID, ID: "l1"}},
		{`{"_id":"l1","title":"Intro"}`, LessonRef{Kind: RefPopulated, ID: "l1", Title: "Intro"}},
		{`{"id":"l2"}`, LessonRef{Kind: RefPopulated, ID: "l2"}},
	}
	for _, tt := range tests {
		var got LessonRef
		require.NoError(t, json.Unmarshal([]byte(tt.in), &got), tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	var bad LessonRef
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.BaseURL = "ftp://example.com"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Retry.MaxAttempts = 0
	assert.Error(t, cfg.Validate())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil, "x"))
	assert.Equal(t, "Please log in", Message(&APIError{Status: 401, Message: "Please log in"}, "x"))
	assert.Equal(t, "x", Message(errors.New("boom"), "x"))
	assert.Equal(t, "boom", Message(errors.New("boom"), ""))
}
