// Package details implements the series details screen: an action row,
// a season carousel and an episode grid driven by one vertical focus
// machine. Back collapses focus upward before leaving the screen.
package details

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/focus"
	"github.com/teleview/teleview/internal/input"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/resolve"
	"github.com/teleview/teleview/internal/tui/common"
	"github.com/teleview/teleview/internal/tui/styles"
	"github.com/teleview/teleview/internal/xtream"
)

const (
	regionActions  = 0
	regionSeasons  = 1
	regionEpisodes = 2

	episodeColumns = 6
	episodeRows    = 4

	fetchTimeout = 30 * time.Second
)

// Signal is what a handled key asks the router to do.
type Signal int

const (
	SignalNone Signal = iota
	SignalMenu
	SignalBack
)

// Deps are the services the details screen needs.
type Deps struct {
	Client   *xtream.Client
	Resolver *resolve.Resolver
	Progress *progress.Service
}

// Model is the series details screen.
type Model struct {
	deps Deps

	seriesID string
	name     string
	info     *xtream.SeriesInfo
	machine  *focus.Machine

	// records are this series' progress rows, most recent first.
	records []progress.Record

	loading bool
	errText string
}

// New builds an empty details screen; Open loads a series into it.
func New(deps Deps) *Model {
	return &Model{deps: deps, machine: emptyMachine()}
}

func emptyMachine() *focus.Machine {
	return focus.NewMachine(focus.Vertical,
		focus.Region{ID: "actions", Kind: focus.Row},
		focus.Region{ID: "seasons", Kind: focus.Row},
		focus.Region{ID: "episodes", Kind: focus.GridRegion, Columns: episodeColumns, Rows: episodeRows},
	)
}

// Open resets the screen to a series and starts the detail fetch.
func (m *Model) Open(seriesID, name string) tea.Cmd {
	m.seriesID = seriesID
	m.name = name
	m.info = nil
	m.records = nil
	m.errText = ""
	m.loading = true
	m.machine = emptyMachine()

	client := m.deps.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		info, err := client.SeriesDetail(ctx, seriesID)
		return common.SeriesLoadedMsg{SeriesID: seriesID, Info: info, Err: err}
	}
}

// Update consumes the series fetch result.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(common.SeriesLoadedMsg)
	if !ok || loaded.SeriesID != m.seriesID {
		return nil
	}
	m.loading = false
	if loaded.Err != nil {
		m.errText = loaded.Err.Error()
		return nil
	}
	m.info = loaded.Info
	if m.info.Name != "" {
		m.name = m.info.Name
	}
	if recs, err := m.deps.Progress.BySeries(m.seriesID); err == nil {
		m.records = recs
	}

	m.machine.Reload(regionActions, len(m.actions()), nil)
	m.machine.Reload(regionSeasons, len(m.info.Seasons), nil)
	m.reloadEpisodes()
	m.machine.SetActive(regionActions)
	return nil
}

type action struct {
	label string
	run   func() tea.Cmd
}

func (m *Model) actions() []action {
	acts := []action{{label: "▶ Play", run: m.playFirst}}
	if rec := m.latestResumable(); rec != nil {
		acts = append(acts, action{
			label: fmt.Sprintf("↻ Resume S%02dE%02d", rec.Season, rec.EpisodeNumber),
			run:   func() tea.Cmd { return m.resume(*rec) },
		})
	}
	return acts
}

func (m *Model) latestResumable() *progress.Record {
	for i := range m.records {
		if !m.records[i].Completed {
			return &m.records[i]
		}
	}
	return nil
}

func (m *Model) selectedSeason() (int, []content.Item) {
	if m.info == nil || len(m.info.Seasons) == 0 {
		return 0, nil
	}
	idx := m.machine.Index(regionSeasons)
	if idx >= len(m.info.Seasons) {
		idx = len(m.info.Seasons) - 1
	}
	season := m.info.Seasons[idx]
	return season, m.info.Episodes[season]
}

func (m *Model) reloadEpisodes() {
	_, eps := m.selectedSeason()
	m.machine.Reload(regionEpisodes, len(eps), nil)
}

func (m *Model) playFirst() tea.Cmd {
	if m.info == nil || len(m.info.Seasons) == 0 {
		return nil
	}
	season := m.info.Seasons[0]
	eps := m.info.Episodes[season]
	if len(eps) == 0 {
		return nil
	}
	return m.playEpisode(eps[0], eps)
}

func (m *Model) playEpisode(ep content.Item, season []content.Item) tea.Cmd {
	intent, err := m.deps.Resolver.EpisodeIntent(ep, season)
	if err != nil {
		m.errText = err.Error()
		return nil
	}
	itemID := ep.ID
	return func() tea.Msg { return common.PlayRequestMsg{Intent: intent, ItemID: itemID} }
}

func (m *Model) resume(rec progress.Record) tea.Cmd {
	intent, itemID, err := m.deps.Resolver.ResumeIntent(rec)
	if err != nil {
		m.errText = err.Error()
		return nil
	}
	return func() tea.Msg { return common.PlayRequestMsg{Intent: intent, ItemID: itemID} }
}

// Handle routes one remote key.
func (m *Model) Handle(ev input.Event) (tea.Cmd, Signal) {
	switch {
	case ev.IsDirectional():
		return m.handleMove(ev)

	case ev.Code == input.KeyEnter:
		if m.errText != "" {
			return m.Open(m.seriesID, m.name), SignalNone
		}
		return m.confirm(), SignalNone

	case ev.IsBack():
		// Collapse toward the action row before leaving.
		if m.machine.Active() != regionActions {
			m.machine.SetActive(regionActions)
			return nil, SignalNone
		}
		return nil, SignalBack
	}
	return nil, SignalNone
}

func (m *Model) handleMove(ev input.Event) (tea.Cmd, Signal) {
	var dir focus.Direction
	switch ev.Code {
	case input.KeyLeft:
		dir = focus.Left
	case input.KeyUp:
		dir = focus.Up
	case input.KeyRight:
		dir = focus.Right
	default:
		dir = focus.Down
	}

	before := m.machine.Index(regionSeasons)
	eff := m.machine.Move(dir)
	if eff == focus.EffExitLeft {
		return nil, SignalMenu
	}
	if m.machine.Active() == regionSeasons && m.machine.Index(regionSeasons) != before {
		m.reloadEpisodes()
	}
	return nil, SignalNone
}

func (m *Model) confirm() tea.Cmd {
	region, abs := m.machine.Focused()
	switch region {
	case regionActions:
		acts := m.actions()
		if abs < len(acts) {
			return acts[abs].run()
		}
	case regionSeasons:
		m.machine.SetActive(regionEpisodes)
	case regionEpisodes:
		_, eps := m.selectedSeason()
		if abs < len(eps) {
			return m.playEpisode(eps[abs], eps)
		}
	}
	return nil
}

// watchedState reports an episode's progress: 2 completed, 1 partial,
// 0 unwatched.
func (m *Model) watchedState(season int, ep content.Item) int {
	key := content.SeriesProgressKey(m.seriesID, season, ep.ID)
	for _, rec := range m.records {
		if rec.Key != key {
			continue
		}
		if rec.Completed {
			return 2
		}
		return 1
	}
	return 0
}

// View renders the details page.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("  "+m.name+"  ") + "\n\n")

	if m.errText != "" {
		b.WriteString(styles.ErrorStyle.Render("Error: "+m.errText) + "\n")
		b.WriteString(styles.HelpStyle.Render("OK retry • Back return"))
		return b.String()
	}
	if m.loading || m.info == nil {
		b.WriteString(styles.MutedStyle.Render("Loading..."))
		return b.String()
	}

	if m.info.Plot != "" {
		b.WriteString(styles.MutedStyle.Render(runewidth.Wrap(m.info.Plot, 72)) + "\n\n")
	}
	b.WriteString(m.viewActions() + "\n\n")
	b.WriteString(m.viewSeasons() + "\n\n")
	b.WriteString(m.viewEpisodes() + "\n")
	b.WriteString(styles.HelpStyle.Render("↑↓←→ navigate • OK select • Back up"))
	return b.String()
}

func (m *Model) viewActions() string {
	active := m.machine.Active() == regionActions
	cursor := m.machine.Index(regionActions)
	var cells []string
	for i, a := range m.actions() {
		style := styles.KeycapStyle
		if active && i == cursor {
			style = styles.KeycapFocusedStyle
		}
		cells = append(cells, style.Render(a.label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *Model) viewSeasons() string {
	active := m.machine.Active() == regionSeasons
	cursor := m.machine.Index(regionSeasons)
	var cells []string
	for i, season := range m.info.Seasons {
		style := styles.CategoryStyle
		if i == cursor {
			if active {
				style = styles.CategoryFocusedStyle
			} else {
				style = styles.CategoryInactiveCursorStyle
			}
		}
		cells = append(cells, style.Render(fmt.Sprintf("Season %d", season)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *Model) viewEpisodes() string {
	season, eps := m.selectedSeason()
	if len(eps) == 0 {
		return styles.MutedStyle.Render("No episodes")
	}
	g := m.machine.Grid(regionEpisodes)
	active := m.machine.Active() == regionEpisodes
	cursor := m.machine.Index(regionEpisodes)
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
			ep := eps[start+local]
			label := fmt.Sprintf("E%02d", ep.Episode)
			switch m.watchedState(season, ep) {
			case 2:
				label += " ✓"
			case 1:
				label += " ▸"
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
	if g.TotalPages() > 1 {
		pager := styles.MutedStyle.Render(fmt.Sprintf("Page %d/%d", g.Page+1, g.TotalPages()))
		return lipgloss.JoinVertical(lipgloss.Left, grid, pager)
	}
	return grid
}
