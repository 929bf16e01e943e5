// Package browse implements the three catalog screens (live, movies,
// series) as one component parametrized by content kind: a category
// sidebar, a paginated poster grid, an optional preview pane, and a
// fuzzy filter. Screen-specific behavior is confined to the confirm
// resolution and the EPG strip on the live screen.
package browse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/epg"
	"github.com/teleview/teleview/internal/favorites"
	"github.com/teleview/teleview/internal/focus"
	"github.com/teleview/teleview/internal/input"
	"github.com/teleview/teleview/internal/resolve"
	"github.com/teleview/teleview/internal/screenstate"
	"github.com/teleview/teleview/internal/tui/common"
	"github.com/teleview/teleview/internal/tui/styles"
	"github.com/teleview/teleview/internal/xtream"
)

const (
	regionCategories = 0
	regionGrid       = 1

	// FavoritesCategoryID marks the synthesized favorites category.
	FavoritesCategoryID = "favorites"

	fetchTimeout = 30 * time.Second
)

// Signal is what a handled key asks the router to do.
type Signal int

const (
	SignalNone Signal = iota
	// SignalMenu opens the side menu (Left at the outer boundary).
	SignalMenu
	// SignalBack pops the navigation history.
	SignalBack
)

// Deps are the services a browse screen needs.
type Deps struct {
	Client    *xtream.Client
	Resolver  *resolve.Resolver
	Favorites *favorites.Service
	EPG       *epg.Service
	States    *screenstate.Store
	Columns   int
	Rows      int
}

// Model is one browse screen.
type Model struct {
	kind content.Kind
	deps Deps

	machine *focus.Machine
	filter  *common.FuzzyFilter

	categories []content.Category
	items      []content.Item // items of the selected category
	visible    []int          // filter view into items
	favKeys    map[string]bool
	unlocked   map[string]bool

	// pending holds a selection waiting on the passcode modal.
	pending *content.Item

	nowNext   *epg.NowNext
	nowNextID string

	gen     uint64
	loading bool
	errText string
	preview bool

	restore *screenstate.State
	width   int
	height  int
}

// New builds a browse screen for one content kind.
func New(kind content.Kind, deps Deps) *Model {
	if deps.Columns <= 0 {
		deps.Columns = 5
	}
	if deps.Rows <= 0 {
		deps.Rows = 3
	}
	return &Model{
		kind:   kind,
		deps:   deps,
		filter: common.NewFuzzyFilter(),
		machine: focus.NewMachine(focus.Horizontal,
			focus.Region{ID: "categories", Kind: focus.List},
			focus.Region{ID: "grid", Kind: focus.GridRegion, Columns: deps.Columns, Rows: deps.Rows},
		),
		favKeys:  map[string]bool{},
		unlocked: map[string]bool{},
	}
}

// Kind returns the screen's content kind.
func (m *Model) Kind() content.Kind { return m.kind }

// FilterEditing reports whether the fuzzy filter owns printable keys.
func (m *Model) FilterEditing() bool { return m.filter.Editing() }

func (m *Model) screenName() string { return "browse:" + string(m.kind) }

// SetSize stores the terminal size for layout.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Load kicks off the category fetch, applying any saved screen state
// once data arrives.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	m.errText = ""
	if st, err := m.deps.States.Load(m.screenName()); err == nil {
		m.restore = st
	}
	m.refreshFavorites()
	m.gen++
	gen := m.gen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		cats, err := m.fetchCategories(ctx)
		return common.CategoriesLoadedMsg{Kind: m.kind, Categories: cats, Gen: gen, Err: err}
	}
}

func (m *Model) fetchCategories(ctx context.Context) ([]content.Category, error) {
	switch m.kind {
	case content.KindChannel:
		return m.deps.Client.LiveCategories(ctx)
	case content.KindMovie:
		return m.deps.Client.VodCategories(ctx)
	default:
		return m.deps.Client.SeriesCategories(ctx)
	}
}

func (m *Model) fetchItems(ctx context.Context, categoryID string) ([]content.Item, error) {
	if categoryID == FavoritesCategoryID {
		return m.fetchFavoriteItems(ctx)
	}
	switch m.kind {
	case content.KindChannel:
		return m.deps.Client.LiveStreams(ctx, categoryID)
	case content.KindMovie:
		return m.deps.Client.VodStreams(ctx, categoryID)
	default:
		return m.deps.Client.Series(ctx, categoryID)
	}
}

// fetchFavoriteItems loads the whole catalog for the kind and keeps
// the starred rows, preserving favorite order.
func (m *Model) fetchFavoriteItems(ctx context.Context) ([]content.Item, error) {
	ids, err := m.deps.Favorites.IDs(m.kind)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	all, err := m.fetchItems(ctx, "")
	if err != nil {
		return nil, err
	}
	byID := make(map[string]content.Item, len(all))
	for _, it := range all {
		byID[it.ID] = it
	}
	out := make([]content.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *Model) refreshFavorites() {
	if keys, err := m.deps.Favorites.Keys(m.kind); err == nil {
		m.favKeys = keys
	}
}

// loadItems issues the item fetch for a category.
func (m *Model) loadItems(categoryID string) tea.Cmd {
	m.loading = true
	m.errText = ""
	m.gen++
	gen := m.gen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		items, err := m.fetchItems(ctx, categoryID)
		return common.ItemsLoadedMsg{Kind: m.kind, CategoryID: categoryID, Items: items, Gen: gen, Err: err}
	}
}

// SaveState persists the current focus for restoration later.
func (m *Model) SaveState() {
	st := screenstate.State{
		CategoryFocus: m.machine.Index(regionCategories),
		Page:          m.machine.Page(regionGrid),
		ItemFocus:     m.machine.Index(regionGrid),
	}
	if cat := m.selectedCategory(); cat != nil {
		st.CategoryID = cat.ID
	}
	_ = m.deps.States.Save(m.screenName(), st)
}

func (m *Model) selectedCategory() *content.Category {
	idx := m.machine.Index(regionCategories)
	if idx < 0 || idx >= len(m.categories) {
		return nil
	}
	return &m.categories[idx]
}

// focusedItem returns the item under the grid cursor, nil when the
// grid is empty.
func (m *Model) focusedItem() *content.Item {
	abs := m.machine.Abs(regionGrid)
	if abs < 0 || abs >= len(m.visible) {
		return nil
	}
	return &m.items[m.visible[abs]]
}

// Unlock records a verified passcode for a category and replays the
// selection that triggered the prompt.
func (m *Model) Unlock(categoryID string) tea.Cmd {
	m.unlocked[categoryID] = true
	if m.pending == nil {
		return nil
	}
	item := *m.pending
	m.pending = nil
	return m.resolveSelection(item)
}

// CancelPending drops a selection waiting on a dismissed passcode modal.
func (m *Model) CancelPending() { m.pending = nil }

func (m *Model) resolveSelection(item content.Item) tea.Cmd {
	cat := m.selectedCategory()
	var category content.Category
	if cat != nil {
		category = *cat
	}
	outcome, err := m.deps.Resolver.Resolve(item, category, m.unlocked[category.ID])
	if err != nil {
		m.errText = err.Error()
		return nil
	}
	switch outcome.Kind {
	case resolve.OutcomePasscode:
		pending := item
		m.pending = &pending
		return func() tea.Msg { return common.PasscodeRequiredMsg{CategoryID: category.ID} }
	case resolve.OutcomeOpenSeries:
		return func() tea.Msg {
			return common.OpenSeriesMsg{SeriesID: outcome.SeriesID, Name: item.Name, Origin: m.kind}
		}
	default:
		intent := outcome.Intent
		itemID := outcome.ItemID
		return func() tea.Msg { return common.PlayRequestMsg{Intent: intent, ItemID: itemID} }
	}
}

// directPlay is the P shortcut: series items start playing without
// opening details; everything else resolves like a normal confirm.
// Protected categories still go through the passcode prompt.
func (m *Model) directPlay() tea.Cmd {
	item := m.focusedItem()
	if item == nil {
		return nil
	}
	cat := m.selectedCategory()
	if item.Kind != content.KindSeries || (cat != nil && cat.Protected && !m.unlocked[cat.ID]) {
		return m.resolveSelection(*item)
	}

	resolver := m.deps.Resolver
	seriesID := item.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		intent, itemID, err := resolver.DirectPlayIntent(ctx, seriesID)
		if err != nil {
			return common.StatusMsg{Text: "Playback failed: " + err.Error(), IsErr: true}
		}
		return common.PlayRequestMsg{Intent: intent, ItemID: itemID}
	}
}

// toggleFavorite flips the focused item's star.
func (m *Model) toggleFavorite() tea.Cmd {
	item := m.focusedItem()
	if item == nil {
		return nil
	}
	it := *item
	svc := m.deps.Favorites
	return func() tea.Msg {
		on, err := svc.Toggle(it)
		return common.FavoriteToggledMsg{Key: content.FavoriteKey(it.Kind, it.ID), Favorite: on, Err: err}
	}
}

// nowNextCmd queries the guide for the focused channel.
func (m *Model) nowNextCmd() tea.Cmd {
	if m.kind != content.KindChannel || !m.deps.EPG.Loaded() {
		return nil
	}
	item := m.focusedItem()
	if item == nil || item.EPGChannelID == "" {
		return nil
	}
	id := item.EPGChannelID
	svc := m.deps.EPG
	return func() tea.Msg {
		return common.NowNextMsg{ChannelID: id, NowNext: svc.NowNext(id)}
	}
}

// Handle routes one remote key.
func (m *Model) Handle(ev input.Event) (tea.Cmd, Signal) {
	// The filter owns printable keys while editing; OK locks it, Back
	// clears it.
	if m.filter.Editing() {
		switch {
		case ev.Code == input.KeyEnter, ev.Code == input.KeyDown:
			m.filter.Lock()
			m.applyFilter(nil)
		case ev.IsBack():
			m.filter.Deactivate()
			m.applyFilter(nil)
		}
		return nil, SignalNone
	}

	switch {
	case ev.IsDirectional():
		return m.handleMove(ev)

	case ev.Code == input.KeyEnter:
		if m.errText != "" {
			return m.Load(), SignalNone
		}
		region, _ := m.machine.Focused()
		if region == regionCategories {
			return m.selectCategory(), SignalNone
		}
		if item := m.focusedItem(); item != nil {
			return m.resolveSelection(*item), SignalNone
		}
		return nil, SignalNone

	case ev.IsBack():
		if m.filter.Active() {
			m.filter.Deactivate()
			m.applyFilter(nil)
			return nil, SignalNone
		}
		// Collapse grid focus onto the categories before leaving.
		if m.machine.Active() == regionGrid {
			m.machine.SetActive(regionCategories)
			return nil, SignalNone
		}
		return nil, SignalBack

	case ev.Code == input.KeyInfo:
		m.preview = !m.preview
		return m.nowNextCmd(), SignalNone

	case ev.Code == input.KeyPlay:
		return m.directPlay(), SignalNone

	case ev.Rune == '/':
		return m.filter.Activate(), SignalNone

	case ev.Rune == 'f':
		return m.toggleFavorite(), SignalNone
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

	switch m.machine.Move(dir) {
	case focus.EffExitLeft:
		return nil, SignalMenu
	case focus.EffRegionChanged, focus.EffMoved, focus.EffPageChanged:
		if m.machine.Active() == regionGrid {
			return m.nowNextCmd(), SignalNone
		}
	}
	return nil, SignalNone
}

func (m *Model) selectCategory() tea.Cmd {
	cat := m.selectedCategory()
	if cat == nil {
		return nil
	}
	m.filter.Deactivate()
	return m.loadItems(cat.ID)
}

// applyFilter recomputes the visible index view and reloads the grid
// region, optionally restoring saved focus.
func (m *Model) applyFilter(restore *focus.Restore) {
	m.visible = m.filter.Apply(m.items)
	m.machine.Reload(regionGrid, len(m.visible), restore)
}

// Update consumes the async load messages addressed to this screen.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case common.CategoriesLoadedMsg:
		if msg.Kind != m.kind || msg.Gen != m.gen {
			return nil
		}
		m.loading = false
		if msg.Err != nil {
			m.errText = msg.Err.Error()
			return nil
		}
		m.categories = m.withFavoritesCategory(msg.Categories)
		var restore *focus.Restore
		if m.restore != nil {
			restore = &focus.Restore{Index: m.restore.CategoryFocus}
		}
		m.machine.Reload(regionCategories, len(m.categories), restore)
		return m.selectCategoryFromRestore()

	case common.ItemsLoadedMsg:
		if msg.Kind != m.kind || msg.Gen != m.gen {
			return nil
		}
		m.loading = false
		if msg.Err != nil {
			m.errText = msg.Err.Error()
			return nil
		}
		m.items = msg.Items
		var restore *focus.Restore
		if m.restore != nil {
			restore = &focus.Restore{Page: m.restore.Page, Index: m.restore.ItemFocus}
			m.restore = nil
		}
		m.applyFilter(restore)
		return m.nowNextCmd()

	case common.NowNextMsg:
		if item := m.focusedItem(); item != nil && item.EPGChannelID == msg.ChannelID {
			nn := msg.NowNext
			m.nowNext = &nn
			m.nowNextID = msg.ChannelID
		}
		return nil

	case common.FavoriteToggledMsg:
		if msg.Err == nil {
			m.refreshFavorites()
			m.categories = m.withFavoritesCategory(m.stripFavoritesCategory())
			m.machine.Reload(regionCategories, len(m.categories),
				&focus.Restore{Index: m.machine.Index(regionCategories)})
		}
		return nil

	case common.EPGRefreshedMsg:
		if msg.Err == nil {
			return m.nowNextCmd()
		}
		return nil

	case tea.KeyMsg:
		cmd := m.filter.Update(msg)
		if m.filter.Editing() {
			m.applyFilter(nil)
		}
		return cmd
	}
	return nil
}

// selectCategoryFromRestore reloads the previously selected category
// after categories arrive, falling back to the first category.
func (m *Model) selectCategoryFromRestore() tea.Cmd {
	if len(m.categories) == 0 {
		return nil
	}
	target := m.categories[0].ID
	if m.restore != nil && m.restore.CategoryID != "" {
		for i, c := range m.categories {
			if c.ID == m.restore.CategoryID {
				target = c.ID
				m.machine.Reload(regionCategories, len(m.categories), &focus.Restore{Index: i})
				break
			}
		}
	}
	return m.loadItems(target)
}

// withFavoritesCategory prepends the synthesized favorites category
// when any favorites of this kind exist.
func (m *Model) withFavoritesCategory(cats []content.Category) []content.Category {
	if len(m.favKeys) == 0 {
		return cats
	}
	out := make([]content.Category, 0, len(cats)+1)
	out = append(out, content.Category{ID: FavoritesCategoryID, Name: "★ Favorites"})
	return append(out, cats...)
}

func (m *Model) stripFavoritesCategory() []content.Category {
	if len(m.categories) > 0 && m.categories[0].ID == FavoritesCategoryID {
		return m.categories[1:]
	}
	return m.categories
}

func (m *Model) title() string {
	switch m.kind {
	case content.KindChannel:
		return "LIVE TV"
	case content.KindMovie:
		return "MOVIES"
	default:
		return "SERIES"
	}
}

// View renders the sidebar, grid and optional preview pane.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("  "+m.title()+"  ") + "\n\n")

	if m.errText != "" {
		b.WriteString(styles.ErrorStyle.Render("Error: "+m.errText) + "\n")
		b.WriteString(styles.HelpStyle.Render("OK retry • ← menu"))
		return b.String()
	}
	if m.loading && len(m.categories) == 0 {
		b.WriteString(styles.MutedStyle.Render("Loading..."))
		return b.String()
	}

	columns := []string{m.viewCategories(), m.viewGrid()}
	if m.preview {
		columns = append(columns, m.viewPreview())
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))

	if m.filter.Active() {
		b.WriteString("\n" + m.filter.View())
	}
	b.WriteString("\n" + styles.HelpStyle.Render("↑↓←→ navigate • OK select • / filter • f favorite • i info"))
	return b.String()
}

func (m *Model) viewCategories() string {
	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Categories") + "\n")
	active := m.machine.Active() == regionCategories
	cursor := m.machine.Index(regionCategories)
	for i, c := range m.categories {
		name := runewidth.Truncate(c.Name, 24, "…")
		if c.Protected {
			name = "🔒 " + name
		}
		style := styles.CategoryStyle
		if i == cursor {
			if active {
				style = styles.CategoryFocusedStyle
			} else {
				style = styles.CategoryInactiveCursorStyle
			}
		}
		b.WriteString(style.Render(name) + "\n")
	}
	return b.String()
}

func (m *Model) viewGrid() string {
	g := m.machine.Grid(regionGrid)
	if g.Items == 0 {
		return styles.MutedStyle.Render("\n  No items")
	}
	active := m.machine.Active() == regionGrid
	cursor := m.machine.Index(regionGrid)
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
			item := m.items[m.visible[start+local]]
			label := runewidth.Truncate(item.Name, 18, "…")
			if m.favKeys[content.FavoriteKey(item.Kind, item.ID)] {
				label = styles.BadgeFavStyle.Render("★") + " " + label
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
	pager := styles.MutedStyle.Render(fmt.Sprintf("Page %d/%d", g.Page+1, g.TotalPages()))
	return lipgloss.JoinVertical(lipgloss.Left, grid, pager)
}

func (m *Model) viewPreview() string {
	item := m.focusedItem()
	if item == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(item.Name) + "\n")
	if item.Year > 0 {
		b.WriteString(styles.MutedStyle.Render(strconv.Itoa(item.Year)) + "  ")
	}
	if item.Rating > 0 {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("★ %.1f", item.Rating)) + "\n")
	} else if item.Year > 0 {
		b.WriteString("\n")
	}
	if item.Synopsis != "" {
		b.WriteString("\n" + styles.MutedStyle.Render(runewidth.Wrap(item.Synopsis, 36)) + "\n")
	}
	if m.kind == content.KindChannel {
		b.WriteString(m.viewNowNext(item))
	}
	return styles.ModalStyle.Render(b.String())
}

func (m *Model) viewNowNext(item *content.Item) string {
	if m.nowNext == nil || m.nowNextID != item.EPGChannelID {
		return styles.MutedStyle.Render("\nNo guide data")
	}
	var b strings.Builder
	nn := *m.nowNext
	if nn.Now != nil {
		b.WriteString("\n" + styles.BadgeLiveStyle.Render(" NOW ") + " " + nn.Now.Title + "\n")
		b.WriteString(renderProgressBar(nn.ProgressFraction(time.Now()), 24) + "\n")
	}
	if nn.Next != nil {
		b.WriteString(styles.MutedStyle.Render("Next: "+nn.Next.Title) + "\n")
	}
	if nn.Now == nil && nn.Next == nil {
		b.WriteString(styles.MutedStyle.Render("\nNo guide data"))
	}
	return b.String()
}

func renderProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	return styles.ProgressBarFilled.Render(strings.Repeat("█", filled)) +
		styles.ProgressBarEmpty.Render(strings.Repeat("░", width-filled))
}
