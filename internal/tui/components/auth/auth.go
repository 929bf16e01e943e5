// Package auth implements the login form and the pending-approval
// waiting screen. The router owns the actual portal probe; this
// component only collects credentials and renders auth state.
package auth

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/teleview/teleview/internal/input"
	"github.com/teleview/teleview/internal/tui/common"
	"github.com/teleview/teleview/internal/tui/styles"
)

const fieldCount = 3 // portal url, username, password

// Phase is what the auth screen is currently showing.
type Phase int

const (
	PhaseForm Phase = iota
	PhaseProbing
	PhasePending
)

// Model is the auth screen.
type Model struct {
	phase   Phase
	fields  [fieldCount]textinput.Model
	focused int
	spinner spinner.Model
	errText string
}

// New builds the login form, optionally prefilled from config.
func New(portalURL, username string) Model {
	labels := [fieldCount]string{"Portal URL", "Username", "Password"}
	var m Model
	for i := range m.fields {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Width = 48
		ti.TextStyle = styles.CategoryStyle
		m.fields[i] = ti
	}
	m.fields[0].SetValue(portalURL)
	m.fields[1].SetValue(username)
	m.fields[2].EchoMode = textinput.EchoPassword
	m.fields[0].Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SubtitleStyle
	m.spinner = s
	return m
}

// Phase reports the current auth phase.
func (m Model) Phase() Phase { return m.phase }

// SetPhase switches phase; entering the form clears any probe error
// shown from a previous attempt only on explicit SetError.
func (m *Model) SetPhase(p Phase) {
	m.phase = p
}

// SetError shows a failure under the form and returns to it.
func (m *Model) SetError(text string) {
	m.phase = PhaseForm
	m.errText = text
}

// Tick returns the spinner tick command for the waiting phases.
func (m Model) Tick() tea.Cmd { return m.spinner.Tick }

// Update advances the spinner and feeds typing to the focused field.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.phase == PhaseForm {
			var cmd tea.Cmd
			m.fields[m.focused], cmd = m.fields[m.focused].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// Handle routes a remote key. On submit it emits LoginSubmitMsg; Back
// is inert on this screen (there is nowhere to go).
func (m *Model) Handle(ev input.Event) tea.Cmd {
	if m.phase != PhaseForm {
		return nil
	}
	switch ev.Code {
	case input.KeyUp:
		m.focusField(m.focused - 1)
	case input.KeyDown:
		m.focusField(m.focused + 1)
	case input.KeyEnter:
		if m.focused < fieldCount-1 {
			m.focusField(m.focused + 1)
			return nil
		}
		url := strings.TrimSpace(m.fields[0].Value())
		user := strings.TrimSpace(m.fields[1].Value())
		pass := m.fields[2].Value()
		if url == "" || user == "" || pass == "" {
			m.errText = "All fields are required"
			return nil
		}
		m.errText = ""
		m.phase = PhaseProbing
		return func() tea.Msg {
			return common.LoginSubmitMsg{PortalURL: url, Username: user, Password: pass}
		}
	}
	return nil
}

func (m *Model) focusField(i int) {
	if i < 0 || i >= fieldCount {
		return
	}
	m.fields[m.focused].Blur()
	m.focused = i
	m.fields[i].Focus()
}

// View renders the current phase.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("  SIGN IN  ") + "\n\n")

	switch m.phase {
	case PhaseProbing:
		b.WriteString(m.spinner.View() + " Contacting portal...\n")
	case PhasePending:
		b.WriteString(styles.SubtitleStyle.Render("Account awaiting approval") + "\n\n")
		b.WriteString(m.spinner.View() + " Checking again periodically.\n")
		b.WriteString(styles.MutedStyle.Render("Ask your provider to approve this device.") + "\n")
	default:
		labels := [fieldCount]string{"Portal URL", "Username", "Password"}
		for i, f := range m.fields {
			label := styles.MutedStyle.Render(labels[i])
			if i == m.focused {
				label = styles.SubtitleStyle.Render(labels[i])
			}
			b.WriteString(label + "\n" + f.View() + "\n\n")
		}
		if m.errText != "" {
			b.WriteString(styles.ErrorStyle.Render(m.errText) + "\n")
		}
		b.WriteString(styles.HelpStyle.Render("↑/↓ fields • OK next/submit"))
	}
	return b.String()
}
