package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/edulearn/internal/router"
	"github.com/abhisek/edulearn/internal/screen"
	"github.com/abhisek/edulearn/internal/screens/dashboard"
	"github.com/abhisek/edulearn/internal/screens/history"
	"github.com/abhisek/edulearn/internal/screens/lessons"
	"github.com/abhisek/edulearn/internal/screens/login"
	"github.com/abhisek/edulearn/internal/screens/quizzes"
	"github.com/abhisek/edulearn/internal/summary"
	"github.com/abhisek/edulearn/internal/ui/components"
)

type signedOutMsg struct{ err error }

// HomeScreen is the main menu.
type HomeScreen struct {
	svc      *screen.Services
	menu     components.Menu
	labels   []string
	disabled map[int]bool
	learner  summary.Learner
	user     string
	signedIn bool
	note     string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(svc *screen.Services) *HomeScreen {
	h := &HomeScreen{svc: svc}
	h.refresh()
	return h
}

func (h *HomeScreen) refresh() {
	ctx := context.Background()
	h.learner = summary.ForLearner(h.svc.Lessons.Record(ctx), h.svc.QuizRecord(ctx))

	u, ok := h.svc.User(ctx)
	h.signedIn = ok
	h.user = u.Name
	if h.user == "" {
		h.user = u.Email
	}

	selected := h.menu.Selected
	h.menu = components.NewMenu(h.items())
	if selected > 0 && selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
		h.menu.Selected = selected
	}
	h.labels = make([]string, len(h.menu.Items))
	h.disabled = make(map[int]bool)
	for i, it := range h.menu.Items {
		h.labels[i] = it.Label
		h.disabled[i] = it.Disabled
	}
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) items() []components.MenuItem {
	svc := h.svc
	account := components.MenuItem{
		Label:    "SIGN IN",
		Disabled: svc.Auth == nil,
		Action: func() tea.Cmd {
			return push(login.New(svc, func(svc *screen.Services) screen.Screen {
				return dashboard.New(svc)
			}))
		},
	}
	if h.signedIn {
		account = components.MenuItem{Label: "SIGN OUT", Disabled: svc.Auth == nil, Action: h.signOut}
	}

	return []components.MenuItem{
		{Label: "LESSONS", Action: func() tea.Cmd { return push(lessons.New(svc)) }},
		{Label: "QUIZZES", Action: func() tea.Cmd { return push(quizzes.New(svc)) }},
		{Label: "DASHBOARD", Action: func() tea.Cmd { return push(dashboard.New(svc)) }},
		{Label: "HISTORY", Disabled: svc.Attempts == nil, Action: func() tea.Cmd {
			return push(history.New(svc.Attempts))
		}},
		account,
		{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	}
}

func (h *HomeScreen) signOut() tea.Cmd {
	a := h.svc.Auth
	return func() tea.Msg {
		return signedOutMsg{err: a.Logout(context.Background())}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ResumedMsg:
		h.note = ""
		h.refresh()
		return h, nil
	case signedOutMsg:
		h.refresh()
		h.note = "Signed out."
		if msg.err != nil {
			h.svc.Log().Warn("sign out", zap.Error(msg.err))
			h.note = "Signed out on this device. The server could not be reached."
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 34 || width < 90

	cw := contentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderStatsBar(h.learner, cw, compact),
	}

	if compact {
		sections = append(sections, renderMenuCompact(h.labels, h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderMenu(h.labels, h.menu.Selected, cw, h.disabled))
	}

	switch {
	case h.note != "":
		sections = append(sections, renderNote(h.note, cw))
	case h.signedIn:
		sections = append(sections, renderNote("Signed in as "+h.user, cw))
	case h.svc.Auth == nil:
		sections = append(sections, renderNote("Offline mode: progress stays on this computer", cw))
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
