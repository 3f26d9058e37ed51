package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/edulearn/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for screen sections so
// boxes line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 76 {
		w = 76
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border card at the given content width.
func Card(title, content string, cw int) string {
	body := content
	if title != "" {
		body = theme.Title.Render(title) + "\n" + content
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Padding(0, 1).
		Render(body)
}

// Tile renders a small label/value box for summary rows.
func Tile(label, value string, width int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(width).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(value) +
			"\n" + theme.Subtitle.Render(label))
}

// Tiles lays out tiles side by side, splitting cw evenly.
func Tiles(cw int, pairs ...[2]string) string {
	if len(pairs) == 0 {
		return ""
	}
	w := cw/len(pairs) - 1
	boxes := make([]string, len(pairs))
	for i, p := range pairs {
		boxes[i] = Tile(p[0], p[1], w)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// Tabs renders a row of labels with the active one highlighted.
func Tabs(labels []string, active int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		if i == active {
			parts[i] = theme.TabActive.Render(l)
		} else {
			parts[i] = theme.TabInactive.Render(l)
		}
	}
	return strings.Join(parts, " ")
}

// Center places s horizontally in width.
func Center(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

// Message renders a centered, dimmed status line such as "Loading...".
func Message(s string, width int) string {
	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render("\n\n" + s)
}
