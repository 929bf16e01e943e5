// Package search implements the global catalog search screen: an
// on-screen keyboard for remote-driven text entry over a result grid.
// Physical keyboard typing feeds the same buffer.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/focus"
	"github.com/teleview/teleview/internal/input"
	"github.com/teleview/teleview/internal/resolve"
	"github.com/teleview/teleview/internal/tui/common"
	"github.com/teleview/teleview/internal/tui/styles"
	"github.com/teleview/teleview/internal/xtream"
)

const (
	maxQueryLen  = 50
	maxResults   = 60
	gridColumns  = 4
	gridRows     = 3
	fetchTimeout = 60 * time.Second
)

// Signal is what a handled key asks the router to do.
type Signal int

const (
	SignalNone Signal = iota
	SignalBack
)

// zone is which half of the screen owns directional keys.
type zone int

const (
	zoneKeyboard zone = iota
	zoneResults
)

// Deps are the services the search screen needs.
type Deps struct {
	Client   *xtream.Client
	Resolver *resolve.Resolver
}

// Model is the search screen.
type Model struct {
	deps Deps

	keyboard *focus.Keyboard
	grid     *focus.Machine
	zone     zone

	results []content.Item
	gen     uint64
	query   string // query the current results answer
	loading bool
	errText string
}

// New builds the search screen.
func New(deps Deps) *Model {
	return &Model{
		deps:     deps,
		keyboard: focus.NewKeyboard(focus.DefaultLayout, maxQueryLen),
		grid: focus.NewMachine(focus.Horizontal,
			focus.Region{ID: "results", Kind: focus.GridRegion, Columns: gridColumns, Rows: gridRows},
		),
	}
}

// Typing reports whether the keyboard zone owns printable keys.
func (m *Model) Typing() bool { return m.zone == zoneKeyboard }

// Reset clears the query and results when the screen opens.
func (m *Model) Reset() {
	m.keyboard.Reset()
	m.results = nil
	m.query = ""
	m.errText = ""
	m.zone = zoneKeyboard
	m.grid.Reload(0, 0, nil)
}

// runSearch fetches the whole catalog and fuzzy-ranks it against the
// typed query. Channels, movies and series all participate.
func (m *Model) runSearch() tea.Cmd {
	query := strings.TrimSpace(m.keyboard.Value())
	if query == "" {
		return nil
	}
	m.loading = true
	m.errText = ""
	m.gen++
	gen := m.gen
	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		var all []content.Item
		for _, fetch := range []func(context.Context, string) ([]content.Item, error){
			client.LiveStreams, client.VodStreams, client.Series,
		} {
			items, err := fetch(ctx, "")
			if err != nil {
				return common.SearchResultsMsg{Query: query, Gen: gen, Err: err}
			}
			all = append(all, items...)
		}

		names := make([]string, len(all))
		for i, it := range all {
			names[i] = it.Name
		}
		matches := fuzzy.Find(query, names)
		if len(matches) > maxResults {
			matches = matches[:maxResults]
		}
		hits := make([]content.Item, len(matches))
		for i, match := range matches {
			hits[i] = all[match.Index]
		}
		return common.SearchResultsMsg{Query: query, Items: hits, Gen: gen}
	}
}

// Update consumes search results.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	res, ok := msg.(common.SearchResultsMsg)
	if !ok || res.Gen != m.gen {
		return nil
	}
	m.loading = false
	if res.Err != nil {
		m.errText = res.Err.Error()
		return nil
	}
	m.results = res.Items
	m.query = res.Query
	m.grid.Reload(0, len(m.results), nil)
	if len(m.results) > 0 {
		m.zone = zoneResults
	}
	return nil
}

// Handle routes one remote key.
func (m *Model) Handle(ev input.Event) (tea.Cmd, Signal) {
	if m.zone == zoneKeyboard {
		return m.handleKeyboard(ev)
	}
	return m.handleResults(ev)
}

func (m *Model) handleKeyboard(ev input.Event) (tea.Cmd, Signal) {
	switch {
	case ev.IsDirectional():
		m.keyboard.Move(toDirection(ev.Code))
		return nil, SignalNone

	case ev.Code == input.KeyEnter:
		if m.keyboard.Press() == focus.KeyboardDone {
			return m.runSearch(), SignalNone
		}
		return nil, SignalNone

	case ev.IsBack():
		if m.keyboard.Value() != "" {
			m.keyboard.Backspace()
			return nil, SignalNone
		}
		return nil, SignalBack

	case ev.Rune != 0:
		// Physical keyboard fallback.
		m.keyboard.Type(ev.Rune)
		return nil, SignalNone
	}
	return nil, SignalNone
}

func (m *Model) handleResults(ev input.Event) (tea.Cmd, Signal) {
	switch {
	case ev.IsDirectional():
		if m.grid.Move(toDirection(ev.Code)) == focus.EffExitUp {
			m.zone = zoneKeyboard
		}
		return nil, SignalNone

	case ev.Code == input.KeyEnter:
		return m.confirm(), SignalNone

	case ev.IsBack():
		m.zone = zoneKeyboard
		return nil, SignalNone
	}
	return nil, SignalNone
}

func (m *Model) confirm() tea.Cmd {
	_, abs := m.grid.Focused()
	if abs < 0 || abs >= len(m.results) {
		return nil
	}
	item := m.results[abs]
	outcome, err := m.deps.Resolver.Resolve(item, content.Category{}, false)
	if err != nil {
		m.errText = err.Error()
		return nil
	}
	switch outcome.Kind {
	case resolve.OutcomeOpenSeries:
		return func() tea.Msg {
			return common.OpenSeriesMsg{SeriesID: outcome.SeriesID, Name: item.Name, Origin: content.KindSeries}
		}
	case resolve.OutcomePlay:
		intent := outcome.Intent
		itemID := outcome.ItemID
		return func() tea.Msg { return common.PlayRequestMsg{Intent: intent, ItemID: itemID} }
	}
	return nil
}

func toDirection(code input.Key) focus.Direction {
	switch code {
	case input.KeyLeft:
		return focus.Left
	case input.KeyUp:
		return focus.Up
	case input.KeyRight:
		return focus.Right
	default:
		return focus.Down
	}
}

// View renders the query line, the keyboard matrix and the results.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("  SEARCH  ") + "\n\n")
	b.WriteString(styles.SubtitleStyle.Render("> "+m.keyboard.Value()+"▏") + "\n\n")
	b.WriteString(m.viewKeyboard() + "\n")

	switch {
	case m.errText != "":
		b.WriteString(styles.ErrorStyle.Render("Error: "+m.errText) + "\n")
	case m.loading:
		b.WriteString(styles.MutedStyle.Render("Searching...") + "\n")
	case m.query != "":
		b.WriteString(m.viewResults() + "\n")
	}
	b.WriteString(styles.HelpStyle.Render("↑↓←→ navigate • OK type/select • ↵ search • Back delete"))
	return b.String()
}

func (m *Model) viewKeyboard() string {
	kbActive := m.zone == zoneKeyboard
	var rows []string
	for r, row := range m.keyboard.Layout {
		var cells []string
		for c, key := range row {
			style := styles.KeycapStyle
			if kbActive && r == m.keyboard.Row && c == m.keyboard.Col {
				style = styles.KeycapFocusedStyle
			}
			cells = append(cells, style.Render(string(key)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) viewResults() string {
	if len(m.results) == 0 {
		return styles.MutedStyle.Render(fmt.Sprintf("No results for %q", m.query))
	}
	g := m.grid.Grid(0)
	active := m.zone == zoneResults
	cursor := m.grid.Index(0)
	start := g.PageStart()
	count := g.CurrentPageCount()

	var rows []string
	for r := 0; r < g.Rows; r++ {
		var cells []string
		for c := 0; c < g.Columns; c++ {
			local := r*g.Columns + c
			if local >= count {
				break
			}
			item := m.results[start+local]
			label := runewidth.Truncate(item.Name, 20, "…")
			if item.Kind == content.KindChannel {
				label = styles.BadgeLiveStyle.Render("LIVE") + " " + label
			}
			style := styles.CellStyle
			if active && local == cursor {
				style = styles.CellFocusedStyle
			}
			cells = append(cells, style.Render(label))
		}
		if len(cells) > 0 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		}
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)
	pager := styles.MutedStyle.Render(fmt.Sprintf("%d results • Page %d/%d", len(m.results), g.Page+1, g.TotalPages()))
	return lipgloss.JoinVertical(lipgloss.Left, grid, pager)
}
