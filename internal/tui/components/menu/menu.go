// Package menu implements the side navigation menu. The router opens
// it on Left at a screen's outer boundary; Right or Back closes it.
package menu

import (
	"strings"

	"github.com/teleview/teleview/internal/focus"
	"github.com/teleview/teleview/internal/input"
	"github.com/teleview/teleview/internal/tui/styles"
)

// Action is what an activated menu entry asks the router to do.
type Action int

const (
	ActionNone Action = iota
	ActionLive
	ActionMovies
	ActionSeries
	ActionSearch
	ActionResume
	ActionGroupCode
	ActionLogout
	ActionClose
)

type entry struct {
	label  string
	action Action
}

var entries = []entry{
	{"Live TV", ActionLive},
	{"Movies", ActionMovies},
	{"Series", ActionSeries},
	{"Search", ActionSearch},
	{"Continue Watching", ActionResume},
	{"Group Code", ActionGroupCode},
	{"Log Out", ActionLogout},
}

// Model is the side menu.
type Model struct {
	machine *focus.Machine
}

// New builds the menu with its fixed entries.
func New() Model {
	return Model{
		machine: focus.NewMachine(focus.Vertical, focus.Region{
			ID:    "menu",
			Kind:  focus.List,
			Count: len(entries),
			Wrap:  true,
		}),
	}
}

// Handle processes one key while the menu is open. Up/Down wrap,
// Right and Back close, OK activates the focused entry.
func (m *Model) Handle(ev input.Event) Action {
	switch {
	case ev.Code == input.KeyUp:
		m.machine.Move(focus.Up)
		return ActionNone
	case ev.Code == input.KeyDown:
		m.machine.Move(focus.Down)
		return ActionNone
	case ev.Code == input.KeyRight, ev.IsBack():
		return ActionClose
	case ev.Code == input.KeyEnter:
		return entries[m.machine.Index(0)].action
	}
	return ActionNone
}

// FocusFirst resets the cursor to the top entry.
func (m *Model) FocusFirst() {
	m.machine.Reload(0, len(entries), nil)
}

// View renders the menu column.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(" TELEVIEW ") + "\n\n")
	for i, e := range entries {
		style := styles.MenuItemStyle
		prefix := "  "
		if i == m.machine.Index(0) {
			style = styles.MenuItemFocusedStyle
			prefix = "> "
		}
		b.WriteString(style.Render(prefix+e.label) + "\n")
	}
	b.WriteString("\n" + styles.HelpStyle.Render("→ close • OK select"))
	return styles.MenuStyle.Render(b.String())
}
