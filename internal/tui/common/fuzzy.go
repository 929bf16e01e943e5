package common

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/tui/styles"
)

// FuzzyFilter narrows a grid to items matching a typed query. While
// active it captures printable keys; locking keeps the filter applied
// but frees the D-pad for grid navigation.
type FuzzyFilter struct {
	input  textinput.Model
	active bool
	locked bool
}

// NewFuzzyFilter creates an inactive filter.
func NewFuzzyFilter() *FuzzyFilter {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.PromptStyle = styles.SubtitleStyle
	ti.TextStyle = styles.MutedStyle
	ti.PlaceholderStyle = styles.MutedStyle
	return &FuzzyFilter{input: ti}
}

// Activate starts capturing input.
func (f *FuzzyFilter) Activate() tea.Cmd {
	f.active = true
	f.locked = false
	f.input.SetValue("")
	f.input.Focus()
	return textinput.Blink
}

// Deactivate clears and closes the filter.
func (f *FuzzyFilter) Deactivate() {
	f.active = false
	f.locked = false
	f.input.Blur()
	f.input.SetValue("")
}

// Lock applies the filter but stops editing.
func (f *FuzzyFilter) Lock() {
	if f.active {
		f.locked = true
		f.input.Blur()
	}
}

// Active reports whether the filter is shown.
func (f *FuzzyFilter) Active() bool { return f.active }

// Editing reports whether typed keys belong to the filter.
func (f *FuzzyFilter) Editing() bool { return f.active && !f.locked }

// Query returns the current filter text.
func (f *FuzzyFilter) Query() string { return f.input.Value() }

// Update feeds a key to the text input while editing.
func (f *FuzzyFilter) Update(msg tea.Msg) tea.Cmd {
	if !f.Editing() {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// View renders the filter line.
func (f *FuzzyFilter) View() string {
	if !f.active {
		return ""
	}
	return f.input.View()
}

// Apply returns the indices of items matching the query, best matches
// first. An empty query matches everything in original order.
func (f *FuzzyFilter) Apply(items []content.Item) []int {
	query := f.Query()
	if !f.active || query == "" {
		idx := make([]int, len(items))
		for i := range items {
			idx[i] = i
		}
		return idx
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	matches := fuzzy.Find(query, names)
	idx := make([]int, 0, len(matches))
	for _, m := range matches {
		idx = append(idx, m.Index)
	}
	return idx
}
