package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/edulearn/internal/router"
	"github.com/abhisek/edulearn/internal/screen"
	"github.com/abhisek/edulearn/internal/screens/home"
	"github.com/abhisek/edulearn/internal/screens/welcome"
	"github.com/abhisek/edulearn/internal/ui/layout"
)

// Options configures the TUI application.
type Options struct {
	Services *screen.Services
	// SkipWelcome starts on the home screen.
	SkipWelcome bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	svc    *screen.Services
	router *router.Router
	status layout.Status
	width  int
	height int
}

// newAppModel creates a new AppModel starting on the welcome or home screen.
func newAppModel(opts Options) AppModel {
	svc := opts.Services
	var initial screen.Screen
	if opts.SkipWelcome {
		initial = home.New(svc)
	} else {
		initial = welcome.New(func() screen.Screen { return home.New(svc) })
	}
	m := AppModel{svc: svc, router: router.New(initial)}
	m.refreshStatus()
	return m
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m *AppModel) refreshStatus() {
	u, ok := m.svc.User(context.Background())
	m.status = layout.Status{Degraded: m.svc.Progress.Degraded()}
	if ok {
		m.status.User = u.Name
		if m.status.User == "" {
			m.status.User = u.Email
		}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	m.refreshStatus()
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	log := opts.Services.Log()
	log.Info("starting terminal UI")
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		log.Error("terminal UI exited", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
