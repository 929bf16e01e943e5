// Package resume implements the continue-watching shelf: a horizontal
// strip of partially watched titles, most recent first, with rebuilt
// play intents on confirm.
package resume

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/focus"
	"github.com/teleview/teleview/internal/input"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/resolve"
	"github.com/teleview/teleview/internal/tui/common"
	"github.com/teleview/teleview/internal/tui/styles"
)

// Signal is what a handled key asks the router to do.
type Signal int

const (
	SignalNone Signal = iota
	SignalMenu
	SignalBack
)

// Deps are the services the shelf needs.
type Deps struct {
	Progress *progress.Service
	Resolver *resolve.Resolver
}

// Model is the continue-watching screen.
type Model struct {
	deps Deps

	machine *focus.Machine
	records []progress.Record
	errText string
	loading bool
}

// New builds an empty shelf; Load populates it.
func New(deps Deps) *Model {
	return &Model{
		deps: deps,
		machine: focus.NewMachine(focus.Horizontal,
			focus.Region{ID: "shelf", Kind: focus.Row},
		),
	}
}

// Load fetches the resumable records.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	m.errText = ""
	svc := m.deps.Progress
	return func() tea.Msg {
		recs, err := svc.Resumable()
		return common.ResumeEntriesMsg{Records: recs, Err: err}
	}
}

// Update consumes the shelf fetch.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	entries, ok := msg.(common.ResumeEntriesMsg)
	if !ok {
		return nil
	}
	m.loading = false
	if entries.Err != nil {
		m.errText = entries.Err.Error()
		return nil
	}
	m.records = entries.Records
	m.machine.Reload(0, len(m.records), nil)
	return nil
}

// Handle routes one remote key.
func (m *Model) Handle(ev input.Event) (tea.Cmd, Signal) {
	switch {
	case ev.IsDirectional():
		switch ev.Code {
		case input.KeyLeft:
			if m.machine.Move(focus.Left) == focus.EffExitLeft {
				return nil, SignalMenu
			}
		case input.KeyRight:
			m.machine.Move(focus.Right)
		}
		return nil, SignalNone

	case ev.Code == input.KeyEnter:
		return m.confirm(), SignalNone

	case ev.IsBack():
		return nil, SignalBack

	case ev.Rune == 'x':
		return m.removeFocused(), SignalNone
	}
	return nil, SignalNone
}

func (m *Model) focusedRecord() *progress.Record {
	idx := m.machine.Index(0)
	if idx < 0 || idx >= len(m.records) {
		return nil
	}
	return &m.records[idx]
}

func (m *Model) confirm() tea.Cmd {
	rec := m.focusedRecord()
	if rec == nil {
		return nil
	}
	intent, itemID, err := m.deps.Resolver.ResumeIntent(*rec)
	if err != nil {
		m.errText = err.Error()
		return nil
	}
	return func() tea.Msg { return common.PlayRequestMsg{Intent: intent, ItemID: itemID} }
}

// removeFocused drops an entry from the shelf and the database.
func (m *Model) removeFocused() tea.Cmd {
	rec := m.focusedRecord()
	if rec == nil {
		return nil
	}
	if err := m.deps.Progress.Delete(rec.Key); err != nil {
		m.errText = err.Error()
		return nil
	}
	return m.Load()
}

func recordTitle(rec progress.Record) string {
	if rec.Kind == content.KindSeries || rec.SeriesID != "" {
		name := rec.SeriesName
		if name == "" {
			name = rec.Title
		}
		return fmt.Sprintf("%s S%02dE%02d", name, rec.Season, rec.EpisodeNumber)
	}
	return rec.Title
}

// View renders the shelf.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("  CONTINUE WATCHING  ") + "\n\n")

	switch {
	case m.errText != "":
		b.WriteString(styles.ErrorStyle.Render("Error: "+m.errText) + "\n")
	case m.loading:
		b.WriteString(styles.MutedStyle.Render("Loading...") + "\n")
	case len(m.records) == 0:
		b.WriteString(styles.MutedStyle.Render("Nothing in progress. Start watching something!") + "\n")
	default:
		cursor := m.machine.Index(0)
		var cards []string
		for i, rec := range m.records {
			cards = append(cards, m.viewCard(rec, i == cursor))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n")
	}
	b.WriteString("\n" + styles.HelpStyle.Render("←→ navigate • OK resume • x remove • Back return"))
	return b.String()
}

func (m *Model) viewCard(rec progress.Record, focused bool) string {
	var b strings.Builder
	b.WriteString(runewidth.Truncate(recordTitle(rec), 22, "…") + "\n")
	b.WriteString(viewBar(rec.PercentWatched/100, 22) + "\n")
	b.WriteString(styles.MutedStyle.Render(rec.RemainingLabel()+" left") + "\n")
	b.WriteString(styles.MutedStyle.Render(humanize.Time(rec.LastWatchedAt)))

	style := styles.CellStyle
	if focused {
		style = styles.CellFocusedStyle
	}
	return style.Render(b.String())
}

func viewBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return styles.ProgressBarFilled.Render(strings.Repeat("█", filled)) +
		styles.ProgressBarEmpty.Render(strings.Repeat("░", width-filled))
}
