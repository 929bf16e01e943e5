// Package playerview renders playback state while the external player
// window owns the video: title, transport state, a progress bar for
// VOD, and the failure screen with its retry action.
package playerview

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/playback"
	"github.com/teleview/teleview/internal/player"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/tui/styles"
)

// Model mirrors the playback engine's visible state.
type Model struct {
	state    playback.State
	intent   content.StreamIntent
	progress player.Progress
	errText  string
	spinner  spinner.Model

	// errorFocus selects between Retry (0) and Back (1) on the
	// failure screen.
	errorFocus int
}

// New builds the player status view.
func New() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SubtitleStyle
	return Model{spinner: s}
}

// Tick returns the spinner tick command.
func (m Model) Tick() tea.Cmd { return m.spinner.Tick }

// State reports the mirrored engine state.
func (m Model) State() playback.State { return m.state }

// ErrorFocus reports which failure action is focused.
func (m Model) ErrorFocus() int { return m.errorFocus }

// MoveErrorFocus shifts the failure-screen cursor.
func (m *Model) MoveErrorFocus(delta int) {
	next := m.errorFocus + delta
	if next >= 0 && next <= 1 {
		m.errorFocus = next
	}
}

// Apply folds an engine event into the view.
func (m *Model) Apply(ev playback.Event) {
	switch ev.Type {
	case playback.EventStateChanged:
		m.state = ev.State
		m.intent = ev.Intent
		if ev.State == playback.StateError && ev.Err != nil {
			m.errText = ev.Err.Error()
		}
		if ev.State != playback.StateError {
			m.errText = ""
			m.errorFocus = 0
		}
	case playback.EventProgress:
		m.progress = ev.Progress
		m.intent = ev.Intent
	case playback.EventFailed:
		m.state = playback.StateError
		m.intent = ev.Intent
		if ev.Err != nil {
			m.errText = ev.Err.Error()
		}
	case playback.EventEnded:
		m.state = playback.StateIdle
	}
}

// Update advances the spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	return m, nil
}

// View renders the player box for the current state.
func (m Model) View() string {
	var b strings.Builder
	title := m.intent.Name
	if title == "" {
		title = "Now Playing"
	}
	b.WriteString(styles.TitleStyle.Render("  "+title+"  ") + "\n\n")

	switch m.state {
	case playback.StateInitializing:
		b.WriteString(m.spinner.View() + " Starting player...\n")
		if m.intent.IsLive() {
			b.WriteString(styles.MutedStyle.Render("Tuning live stream") + "\n")
		}

	case playback.StatePlaying, playback.StatePaused:
		badge := styles.BadgeLiveStyle.Render(" LIVE ")
		if !m.intent.IsLive() {
			if m.state == playback.StatePaused {
				badge = styles.StatusStyle.Render(" ⏸ PAUSED ")
			} else {
				badge = styles.StatusStyle.Render(" ▶ PLAYING ")
			}
		}
		b.WriteString(badge + "\n\n")
		b.WriteString(m.viewProgress() + "\n\n")
		b.WriteString(styles.HelpStyle.Render(m.helpLine()))

	case playback.StateError:
		b.WriteString(styles.ErrorStyle.Render("Playback failed") + "\n")
		if m.errText != "" {
			b.WriteString(styles.MutedStyle.Render(m.errText) + "\n")
		}
		b.WriteString("\n" + m.viewErrorActions() + "\n")
		b.WriteString(styles.HelpStyle.Render("←→ choose • OK confirm"))

	default:
		b.WriteString(styles.MutedStyle.Render("Stopped") + "\n")
	}
	return styles.PlayerBoxStyle.Render(b.String())
}

func (m Model) helpLine() string {
	if m.intent.IsLive() {
		return "s stop • Back return"
	}
	return "space pause • </> seek ±10s • s stop • Back return"
}

func (m Model) viewProgress() string {
	if m.intent.IsLive() {
		elapsed := progress.FormatClock(m.progress.Position)
		return styles.MutedStyle.Render("On air for " + elapsed)
	}
	if m.progress.Duration <= 0 {
		return styles.MutedStyle.Render(progress.FormatClock(m.progress.Position))
	}
	const width = 40
	fraction := m.progress.Position.Seconds() / m.progress.Duration.Seconds()
	filled := int(fraction * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := styles.ProgressBarFilled.Render(strings.Repeat("█", filled)) +
		styles.ProgressBarEmpty.Render(strings.Repeat("░", width-filled))
	clock := progress.FormatClock(m.progress.Position) + " / " + progress.FormatClock(m.progress.Duration)
	return lipgloss.JoinVertical(lipgloss.Left, bar, styles.MutedStyle.Render(clock))
}

func (m Model) viewErrorActions() string {
	labels := []string{"↻ Retry", "← Back"}
	var cells []string
	for i, label := range labels {
		style := styles.KeycapStyle
		if i == m.errorFocus {
			style = styles.KeycapFocusedStyle
		}
		cells = append(cells, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// Elapsed is a convenience for tests asserting live wall-clock display.
func (m Model) Elapsed() time.Duration { return m.progress.Position }
