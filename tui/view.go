package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1)
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	buttonStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 2)
	thinkingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Padding(0, 1)
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const answerHeading = "Answer:"

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sansad Q&A"))
	b.WriteString("\n\n")
	b.WriteString(m.textarea.View())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(thinkingStyle.Render(m.spin.View() + " Thinking..."))
	} else {
		b.WriteString(buttonStyle.Render("Ask"))
	}
	b.WriteString("\n")

	if m.answer != "" {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render(answerHeading))
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(m.renderAnswer()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: ask • esc: quit"))
	b.WriteString("\n")

	return b.String()
}

// renderAnswer formats the answer as markdown, falling back to plain
// wrapping when no renderer is available.
func (m Model) renderAnswer() string {
	width := contentWidth(m.width)
	if m.renderer == nil {
		return wordwrap.String(m.answer, width)
	}
	rendered, ok := safeRender(m.renderer, m.answer)
	if !ok {
		return wordwrap.String(m.answer, width)
	}
	return strings.TrimSpace(rendered)
}

// safeRender guards against panics inside the markdown renderer.
func safeRender(renderer *glamour.TermRenderer, text string) (out string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	rendered, err := renderer.Render(text)
	if err != nil {
		return "", false
	}
	return rendered, true
}

func contentWidth(width int) int {
	if width <= 8 {
		return 72
	}
	return width - 4
}
