package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/edulearn/internal/api"
)

// Authenticator is the subset of the API client the auth flows use.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.Session, error)
	Register(ctx context.Context, name, email, password string) (api.Session, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)
}

// Service runs the account flows: validate the form, call the server,
// then store the session.
type Service struct {
	client Authenticator
	tokens *TokenStore
	log    *zap.Logger
}

// NewService creates a Service.
func NewService(client Authenticator, tokens *TokenStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, tokens: tokens, log: log}
}

// Login signs in and stores the session.
func (s *Service) Login(ctx context.Context, form LoginForm) (api.User, error) {
	form.Normalize()
	if err := Validate(form); err != nil {
		return api.User{}, err
	}
	sess, err := s.client.Login(ctx, form.Email, form.Password)
	if err != nil {
		return api.User{}, err
	}
	return s.store(ctx, sess)
}

// Register creates an account and stores the session.
func (s *Service) Register(ctx context.Context, form RegisterForm) (api.User, error) {
	form.Normalize()
	if err := Validate(form); err != nil {
		return api.User{}, err
	}
	sess, err := s.client.Register(ctx, form.Name, form.Email, form.Password)
	if err != nil {
		return api.User{}, err
	}
	return s.store(ctx, sess)
}

func (s *Service) store(ctx context.Context, sess api.Session) (api.User, error) {
	if err := s.tokens.Save(ctx, sess); err != nil {
		return api.User{}, err
	}
	s.log.Info("signed in", zap.String("user", sess.User.ID), zap.String("role", sess.User.Role))
	return sess.User, nil
}

// Logout tells the server and always clears the local session, even when
// the server call fails.
func (s *Service) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	s.tokens.Clear(ctx)
	if err != nil {
		s.log.Warn("server logout failed", zap.Error(err))
	}
	return err
}

// ForgotPassword requests a reset email.
func (s *Service) ForgotPassword(ctx context.Context, form ForgotForm) (string, error) {
	form.Normalize()
	if err := Validate(form); err != nil {
		return "", err
	}
	return s.client.ForgotPassword(ctx, form.Email)
}

// ResetPassword sets a new password.
func (s *Service) ResetPassword(ctx context.Context, form ResetForm) (string, error) {
	form.Normalize()
	if err := Validate(form); err != nil {
		return "", err
	}
	return s.client.ResetPassword(ctx, form.Token, form.Password)
}

// Landing names where a role goes after signing in.
type Landing string

const (
	LandingAdmin      Landing = "admin"
	LandingInstructor Landing = "instructor"
	LandingLearner    Landing = "learner"
)

// LandingFor maps a role to its home dashboard. Unknown roles are treated
// as learners.
func LandingFor(role string) Landing {
	switch role {
	case api.RoleAdmin:
		return LandingAdmin
	case api.RoleInstructor:
		return LandingInstructor
	}
	return LandingLearner
}

var _ Authenticator = (*api.Client)(nil)
