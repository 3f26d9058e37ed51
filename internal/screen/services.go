package screen

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/auth"
	"github.com/abhisek/edulearn/internal/lesson"
	"github.com/abhisek/edulearn/internal/progress"
	"github.com/abhisek/edulearn/internal/quiz"
	"github.com/abhisek/edulearn/internal/store"
)

// Remote is the server content the screens read. It is nil when the
// client runs without a server.
type Remote interface {
	ListLessons(ctx context.Context) ([]api.Lesson, error)
	ListQuizzes(ctx context.Context) ([]api.Quiz, error)
	LearnerStats(ctx context.Context) (api.LearnerStats, error)
	QuizAnalytics(ctx context.Context) ([]api.QuizAnalytics, error)
}

// Services are the collaborators shared by every screen.
type Services struct {
	Progress   *progress.Store
	QuizzesKey string
	Lessons    *lesson.Tracker
	Quiz       *quiz.Machine
	Attempts   store.AttemptRepo // nil disables history
	Auth       *auth.Service     // nil disables sign in
	Tokens     *auth.TokenStore
	Remote     Remote
	Logger     *zap.Logger
}

// QuizRecord loads the quiz progress record.
func (s *Services) QuizRecord(ctx context.Context) progress.Record {
	key := s.QuizzesKey
	if key == "" {
		key = progress.QuizzesKey
	}
	return s.Progress.Load(ctx, key)
}

// User returns the signed-in user, if any.
func (s *Services) User(ctx context.Context) (api.User, bool) {
	if s.Tokens == nil {
		return api.User{}, false
	}
	if s.Tokens.Token(ctx) == "" {
		return api.User{}, false
	}
	return s.Tokens.User(ctx)
}

// Log returns the logger, never nil.
func (s *Services) Log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
