package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	dumpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	session *session
	input   textinput.Model
	history []string
	recall  int
	result  *result
	err     error
	width   int
}

func newInteractiveModel(s *session) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "YAML value, e.g. [1, 2, 3] or {a: 1}"
	ti.Prompt = "value: "
	ti.Width = 60
	ti.Focus()
	return &interactiveModel{session: s, input: ti, width: 80}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if v := strings.TrimSpace(m.input.Value()); v != "" {
				m.history = append(m.history, v)
				m.recall = len(m.history)
			}
			m.input.SetValue("")
			return m, nil

		case "up":
			if m.recall > 0 {
				m.recall--
				m.input.SetValue(m.history[m.recall])
				m.input.CursorEnd()
				m.evaluate()
			}
			return m, nil

		case "down":
			if m.recall < len(m.history)-1 {
				m.recall++
				m.input.SetValue(m.history[m.recall])
				m.input.CursorEnd()
				m.evaluate()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.evaluate()
	}
	return m, cmd
}

// evaluate converts the current input, keeping the last result on empty input.
func (m *interactiveModel) evaluate() {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		m.result, m.err = nil, nil
		return
	}
	v, err := decodeValue(text)
	if err != nil {
		m.result, m.err = nil, fmt.Errorf("yaml: %w", err)
		return
	}
	m.result, m.err = m.session.convert(v)
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("typeconv"))
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(m.session.typ.String()))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.result != nil:
		b.WriteString(dumpStyle.Render(hexdump(m.result.data, m.result.addr, rowBytes(m.width))))
		b.WriteString(resultStyle.Render("=> " + m.session.from.Host().Repr(m.result.out)))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("type to convert • enter keep • ↑/↓ history • esc quit"))

	return b.String()
}

func runInteractive(s *session) error {
	p := tea.NewProgram(newInteractiveModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
