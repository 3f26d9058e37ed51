package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// Session is a successful login or registration.
type Session struct {
	Token string
	User  User
}

type authEnvelope struct {
	Token string `json:"token"`
	Data  struct {
		User wireUser `json:"user"`
	} `json:"data"`
}

type userEnvelope struct {
	Data struct {
		User wireUser `json:"user"`
	} `json:"data"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates a learner account and signs it in.
func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, payload map[string]string) (Session, error) {
	var env authEnvelope
	if err := c.call(ctx, http.MethodPost, path, payload, "auth", authSchema, &env); err != nil {
		return Session{}, err
	}
	if env.Token == "" {
		return Session{}, &ErrInvalidResponse{Endpoint: "POST " + path, Err: errors.New("missing token")}
	}
	return Session{Token: env.Token, User: normalizeUser(env.Data.User)}, nil
}

// Me returns the profile for the current token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var env userEnvelope
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, "", nil, &env); err != nil {
		return User{}, err
	}
	return normalizeUser(env.Data.User), nil
}

// Logout invalidates the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil)
	return err
}

// ForgotPassword asks the server to email a reset link. It returns the
// server's confirmation message, if any.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var env messageEnvelope
	err := c.call(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, "", nil, &env)
	return env.Message, err
}

// ResetPassword sets a new password using the emailed reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	var env messageEnvelope
	path := "/auth/reset-password/" + url.PathEscape(token)
	err := c.call(ctx, http.MethodPatch, path, map[string]string{"password": password}, "", nil, &env)
	return env.Message, err
}
