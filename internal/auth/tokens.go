// Package auth keeps the signed-in session on disk and validates the
// account forms before anything is sent to the server.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/progress"
)

// Storage keys for the session.
const (
	TokenKey = "edulearn_token"
	UserKey  = "edulearn_user"
)

// TokenStore persists the bearer token and the signed-in user. Values are
// stored as JSON; unreadable entries are removed and read as absent.
type TokenStore struct {
	backend progress.Backend
	log     *zap.Logger
	now     func() time.Time
}

// NewTokenStore creates a TokenStore over backend.
func NewTokenStore(backend progress.Backend, log *zap.Logger) *TokenStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenStore{backend: backend, log: log, now: time.Now}
}

// Token returns the saved bearer token, or "" when there is none or it has
// expired. It satisfies api.TokenSource.
func (s *TokenStore) Token(ctx context.Context) string {
	var tok string
	if !s.read(ctx, TokenKey, &tok) || tok == "" {
		return ""
	}
	if s.expired(tok) {
		s.log.Info("saved session expired")
		s.Clear(ctx)
		return ""
	}
	return tok
}

// User returns the saved profile.
func (s *TokenStore) User(ctx context.Context) (api.User, bool) {
	if s.Token(ctx) == "" {
		return api.User{}, false
	}
	var u api.User
	if !s.read(ctx, UserKey, &u) {
		return api.User{}, false
	}
	return u, true
}

// Save stores a fresh session.
func (s *TokenStore) Save(ctx context.Context, sess api.Session) error {
	if err := s.SetToken(ctx, sess.Token); err != nil {
		return err
	}
	return s.SetUser(ctx, sess.User)
}

// SetToken stores tok. An empty token removes the saved one.
func (s *TokenStore) SetToken(ctx context.Context, tok string) error {
	if tok == "" {
		return s.backend.Delete(ctx, TokenKey)
	}
	return s.write(ctx, TokenKey, tok)
}

// SetUser stores the profile.
func (s *TokenStore) SetUser(ctx context.Context, u api.User) error {
	return s.write(ctx, UserKey, u)
}

// Clear removes the token and the user.
func (s *TokenStore) Clear(ctx context.Context) {
	for _, key := range []string{TokenKey, UserKey} {
		if err := s.backend.Delete(ctx, key); err != nil {
			s.log.Warn("clear session", zap.String("key", key), zap.Error(err))
		}
	}
}

// expired reports whether tok is a JWT whose exp claim has passed. Tokens
// that are not JWTs, or carry no exp, never expire locally; the server
// still has the final word.
func (s *TokenStore) expired(tok string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}

func (s *TokenStore) read(ctx context.Context, key string, out any) bool {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.log.Warn("read session", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.log.Warn("discarding corrupt session entry", zap.String("key", key), zap.Error(err))
		if delErr := s.backend.Delete(ctx, key); delErr != nil {
			s.log.Warn("clear session", zap.String("key", key), zap.Error(delErr))
		}
		return false
	}
	return true
}

func (s *TokenStore) write(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

var _ api.TokenSource = (*TokenStore)(nil)
