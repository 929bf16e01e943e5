package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/teleview/teleview/internal/focus"
	"github.com/teleview/teleview/internal/tui/styles"
)

// View renders the active screen with the menu and modal overlays.
func (a *App) View() string {
	var main string
	switch a.mode {
	case modeTerms:
		main = a.viewTerms()
	case modeAuth:
		main = a.authScreen.View()
	case modePlayer:
		main = a.player.View()
	case modeDetails:
		if a.detailScreen != nil {
			main = a.detailScreen.View()
		}
	case modeSearch:
		if a.searchScreen != nil {
			main = a.searchScreen.View()
		}
	case modeResume:
		if a.resumeScreen != nil {
			main = a.resumeScreen.View()
		}
	default:
		if b := a.activeBrowse(); b != nil {
			main = b.View()
		}
	}

	if a.menuOpen {
		main = lipgloss.JoinHorizontal(lipgloss.Top, a.menu.View(), "  ", main)
	}
	if a.modal != modalNone {
		main = lipgloss.JoinVertical(lipgloss.Left, main, a.viewModal())
	}
	if a.statusText != "" {
		line := styles.StatusStyle.Render(a.statusText)
		if a.statusIsErr {
			line = styles.ErrorStyle.Render(a.statusText)
		}
		main = lipgloss.JoinVertical(lipgloss.Left, main, line)
	}
	return styles.AppStyle.Render(main)
}

const termsText = `teleview connects to the IPTV portal your provider gave you.
You are responsible for holding a valid subscription to any content
you stream. Watch history and favorites are stored locally only.`

func (a *App) viewTerms() string {
	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Welcome to teleview") + "\n\n")
	b.WriteString(styles.MutedStyle.Render(termsText) + "\n\n")
	b.WriteString(styles.KeycapFocusedStyle.Render("I agree") + "\n\n")
	b.WriteString(styles.HelpStyle.Render("OK accept"))
	return styles.ModalStyle.Render(b.String())
}

func (a *App) viewModal() string {
	switch a.modal {
	case modalPasscode:
		return a.viewPasscodeModal()
	case modalGroupCode:
		return a.viewGroupCodeModal()
	case modalLogout:
		return a.viewLogoutModal()
	}
	return ""
}

func (a *App) viewPasscodeModal() string {
	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Enter passcode") + "\n\n")
	typed := len(a.passcodeKeyboard.Value())
	b.WriteString(strings.Repeat("● ", typed) + strings.Repeat("○ ", passcodeLength-typed) + "\n\n")
	b.WriteString(viewKeyboard(a.passcodeKeyboard) + "\n")
	if a.passcodeError {
		b.WriteString(styles.ErrorStyle.Render("Wrong passcode") + "\n")
	}
	b.WriteString(styles.HelpStyle.Render("digits or keyboard • Back cancel"))
	return styles.ModalStyle.Render(b.String())
}

func (a *App) viewGroupCodeModal() string {
	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Group code") + "\n\n")
	b.WriteString(styles.CategoryStyle.Render("> "+a.groupKeyboard.Value()+"▏") + "\n\n")
	b.WriteString(viewKeyboard(a.groupKeyboard) + "\n")
	b.WriteString(styles.HelpStyle.Render("↵ save • Back cancel"))
	return styles.ModalStyle.Render(b.String())
}

func (a *App) viewLogoutModal() string {
	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Log out?") + "\n\n")
	labels := []string{"Cancel", "Log out"}
	var cells []string
	for i, label := range labels {
		style := styles.KeycapStyle
		if i == a.logoutFocus {
			style = styles.KeycapFocusedStyle
		}
		cells = append(cells, style.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	return styles.ModalStyle.Render(b.String())
}

func viewKeyboard(k *focus.Keyboard) string {
	var rows []string
	for r, row := range k.Layout {
		var cells []string
		for c, key := range row {
			style := styles.KeycapStyle
			if r == k.Row && c == k.Col {
				style = styles.KeycapFocusedStyle
			}
			cells = append(cells, style.Render(string(key)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
