package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/edulearn/internal/ui/theme"
)

// Choices renders the options of one multiple-choice question.
type Choices struct {
	Question string
	Options  []string
	Cursor   int
	Chosen   int // -1 when nothing is chosen
	// Reveal colors the correct option and a wrong choice.
	Reveal       bool
	CorrectIndex int
}

var optionLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

func optionLabel(i int) string {
	if i < len(optionLabels) {
		return optionLabels[i]
	}
	return fmt.Sprint(i + 1)
}

// View renders the question and its options.
func (c Choices) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Question))
	b.WriteString("\n\n")

	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Cursor && !c.Reveal {
			prefix = "▸ "
		}
		mark := "( )"
		if i == c.Chosen {
			mark = "(•)"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, optionLabel(i), opt)

		var style lipgloss.Style
		switch {
		case c.Reveal && i == c.CorrectIndex:
			style = theme.Correct
		case c.Reveal && i == c.Chosen:
			style = theme.Incorrect
		case c.Reveal:
			style = theme.Locked
		case i == c.Cursor:
			style = theme.Selected
		case i == c.Chosen:
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
