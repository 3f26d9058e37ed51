// Package login is the sign-in and sign-up form.
package login

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/auth"
	"github.com/abhisek/edulearn/internal/router"
	"github.com/abhisek/edulearn/internal/screen"
	"github.com/abhisek/edulearn/internal/ui/components"
	"github.com/abhisek/edulearn/internal/ui/layout"
	"github.com/abhisek/edulearn/internal/ui/theme"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

type resultMsg struct {
	seq  int
	user api.User
	err  error
}

// LoginScreen collects credentials and runs auth.Service off the UI loop.
type LoginScreen struct {
	svc      *screen.Services
	next     func(*screen.Services) screen.Screen
	register bool
	inputs   []components.TextInput
	focus    int
	saving   bool
	seq      int
	formErr  string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)
var _ screen.Closer = (*LoginScreen)(nil)

// New creates the form. On success the login screen is replaced with the
// screen built by next.
func New(svc *screen.Services, next func(*screen.Services) screen.Screen) *LoginScreen {
	inputs := []components.TextInput{
		components.NewTextInput("Name", "Your name", false, 80),
		components.NewTextInput("Email", "you@example.com", false, 120),
		components.NewTextInput("Password", "", true, 128),
	}
	return &LoginScreen{svc: svc, next: next, inputs: inputs}
}

func (s *LoginScreen) Init() tea.Cmd {
	s.focus = s.firstField()
	return s.focusCurrent()
}

// Close abandons any request in flight.
func (s *LoginScreen) Close() {
	s.seq++
	s.saving = false
}

func (s *LoginScreen) Title() string {
	if s.register {
		return "Create account"
	}
	return "Sign in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	toggle := "Create account"
	if s.register {
		toggle = "Have an account"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+N", Description: toggle},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LoginScreen) firstField() int {
	if s.register {
		return fieldName
	}
	return fieldEmail
}

func (s *LoginScreen) focusCurrent() tea.Cmd {
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
	return s.inputs[s.focus].Focus()
}

func (s *LoginScreen) move(delta int) tea.Cmd {
	first := s.firstField()
	n := len(s.inputs) - first
	s.focus = first + (s.focus-first+delta+n)%n
	return s.focusCurrent()
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		return s, s.finish(msg)

	case tea.KeyMsg:
		if s.saving {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.move(1)
		case "shift+tab", "up":
			return s, s.move(-1)
		case "ctrl+n":
			s.register = !s.register
			s.clearErrors()
			return s, s.Init()
		case "enter":
			if s.focus < fieldPassword {
				return s, s.move(1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

func (s *LoginScreen) clearErrors() {
	s.formErr = ""
	for i := range s.inputs {
		s.inputs[i].Err = ""
	}
}

func (s *LoginScreen) submit() tea.Cmd {
	if s.svc.Auth == nil {
		s.formErr = "No server configured. Set EDULEARN_API_BASE_URL to sign in."
		return nil
	}
	s.clearErrors()
	s.saving = true
	s.seq++
	seq := s.seq
	svc := s.svc.Auth
	register := s.register
	name := s.inputs[fieldName].Value()
	email := s.inputs[fieldEmail].Value()
	password := s.inputs[fieldPassword].Value()

	return func() tea.Msg {
		ctx := context.Background()
		var u api.User
		var err error
		if register {
			u, err = svc.Register(ctx, auth.RegisterForm{Name: name, Email: email, Password: password})
		} else {
			u, err = svc.Login(ctx, auth.LoginForm{Email: email, Password: password})
		}
		return resultMsg{seq: seq, user: u, err: err}
	}
}

func (s *LoginScreen) finish(msg resultMsg) tea.Cmd {
	if msg.seq != s.seq {
		return nil
	}
	s.saving = false

	if msg.err != nil {
		var ve *auth.ValidationError
		if errors.As(msg.err, &ve) {
			s.inputs[fieldName].Err = ve.For("name")
			s.inputs[fieldEmail].Err = ve.For("email")
			s.inputs[fieldPassword].Err = ve.For("password")
			return nil
		}
		s.formErr = api.Message(msg.err, api.DefaultErrorMessage)
		s.svc.Log().Info("sign in failed", zap.Int("status", api.StatusOf(msg.err)))
		return nil
	}

	s.inputs[fieldPassword].SetValue("")
	next := s.next(s.svc)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *LoginScreen) View(width, height int) string {
	cw := min(components.ContentWidth(width), 56)

	var parts []string
	for i := s.firstField(); i < len(s.inputs); i++ {
		parts = append(parts, s.inputs[i].View())
	}
	body := strings.Join(parts, "\n\n")

	switch {
	case s.saving:
		body += "\n\n" + theme.Hint.Render("Signing in...")
	case s.formErr != "":
		body += "\n\n" + theme.ErrorText.Render(s.formErr)
	}

	hint := "New here? Press Ctrl+N to create an account."
	if s.register {
		hint = "Already have an account? Press Ctrl+N to sign in."
	}
	body += "\n\n" + theme.Hint.Render(hint)

	return components.Center(components.Card(s.Title(), body, cw), width)
}
