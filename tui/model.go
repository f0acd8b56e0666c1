// Package tui implements the interactive question form for the sansad
// backend.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// connectErrText is shown whenever a request does not produce an answer.
const connectErrText = "❌ Error connecting to backend"

const askTimeout = 2 * time.Minute

// Asker is the slice of the backend client the form needs. Implemented by
// client.Client.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// askResultMsg carries the outcome of one backend request.
type askResultMsg struct {
	answer string
	err    error
}

// Model is the question form state.
type Model struct {
	asker    Asker
	textarea textarea.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	answer  string
	loading bool
	width   int
	height  int
}

func New(asker Asker) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your question about parliament sessions..."
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		asker:    asker,
		textarea: ta,
		spin:     sp,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(msg.Width - 4)
		if renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(contentWidth(msg.Width)),
		); err == nil {
			m.renderer = renderer
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			// Enter submits unless a request is already in flight.
			if m.loading {
				return m, nil
			}
			return m.submit()
		}

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case askResultMsg:
		m.loading = false
		if msg.err != nil {
			m.answer = connectErrText
		} else {
			m.answer = msg.answer
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// submit starts a backend request for the current question. Questions that
// are blank after trimming are ignored.
func (m Model) submit() (Model, tea.Cmd) {
	question := m.textarea.Value()
	if strings.TrimSpace(question) == "" {
		return m, nil
	}
	m.loading = true
	m.answer = ""
	return m, tea.Batch(m.spin.Tick, askCmd(m.asker, question))
}

func askCmd(asker Asker, question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()

		answer, err := asker.Ask(ctx, question)
		return askResultMsg{answer: answer, err: err}
	}
}
