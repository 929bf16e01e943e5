package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teleview/teleview/internal/clipboard"
	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/focus"
	"github.com/teleview/teleview/internal/input"
	"github.com/teleview/teleview/internal/playback"
	"github.com/teleview/teleview/internal/resolve"
	"github.com/teleview/teleview/internal/session"
	"github.com/teleview/teleview/internal/tui/common"
	"github.com/teleview/teleview/internal/tui/components/browse"
	"github.com/teleview/teleview/internal/tui/components/details"
	"github.com/teleview/teleview/internal/tui/components/menu"
	"github.com/teleview/teleview/internal/tui/components/resume"
	"github.com/teleview/teleview/internal/tui/components/search"
)

// handleKeyMsg routes every key press by strict priority: quit, then
// an open modal, then the side menu, then media keys, then the active
// screen. Lower layers never see a key a higher layer consumed.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		a.deps.Engine.Stop()
		return a, tea.Quit
	}

	ev := input.FromKeyMsg(msg)

	if a.modal != modalNone {
		return a, a.handleModal(ev)
	}

	if a.menuOpen {
		return a, a.handleMenu(ev)
	}

	// Dedicated media keys reach the engine from any screen. Keyboard
	// aliases (s, space, < >) carry a rune and yield to text entry.
	if ev.IsMedia() && (ev.Rune == 0 || !a.typing()) {
		return a, a.handleMediaKey(ev)
	}

	switch a.mode {
	case modeTerms:
		// Back is inert here: there is nothing to go back to.
		if ev.Code == input.KeyEnter {
			return a, a.acceptTerms()
		}
		return a, nil

	case modeAuth:
		// Typing goes to the focused field; control keys to the form.
		if cmd := a.authScreen.Handle(ev); cmd != nil {
			return a, cmd
		}
		var cmd tea.Cmd
		a.authScreen, cmd = a.authScreen.Update(msg)
		return a, cmd

	case modePlayer:
		return a, a.handlePlayerKey(ev)

	case modeBrowse:
		if b := a.activeBrowse(); b != nil {
			cmd, sig := b.Handle(ev)
			switch sig {
			case browse.SignalMenu:
				a.openMenu()
			case browse.SignalBack:
				a.popMode()
			}
			if cmd == nil && b != nil {
				// Filter typing runs through the textinput.
				cmd = b.Update(msg)
			}
			return a, cmd
		}

	case modeDetails:
		if a.detailScreen != nil {
			cmd, sig := a.detailScreen.Handle(ev)
			switch sig {
			case details.SignalMenu:
				a.openMenu()
			case details.SignalBack:
				a.popMode()
			}
			return a, cmd
		}

	case modeSearch:
		if a.searchScreen != nil {
			cmd, sig := a.searchScreen.Handle(ev)
			if sig == search.SignalBack {
				a.popMode()
			}
			return a, cmd
		}

	case modeResume:
		if a.resumeScreen != nil {
			cmd, sig := a.resumeScreen.Handle(ev)
			switch sig {
			case resume.SignalMenu:
				a.openMenu()
			case resume.SignalBack:
				a.popMode()
			}
			return a, cmd
		}
	}
	return a, nil
}

// typing reports whether the active screen is accepting free text, in
// which case printable media-key aliases must not reach the engine.
func (a *App) typing() bool {
	switch a.mode {
	case modeAuth:
		return true
	case modeSearch:
		return a.searchScreen != nil && a.searchScreen.Typing()
	case modeBrowse:
		b := a.activeBrowse()
		return b != nil && b.FilterEditing()
	}
	return false
}

func (a *App) openMenu() {
	a.menuOpen = true
	a.menu.FocusFirst()
}

func (a *App) handleMenu(ev input.Event) tea.Cmd {
	switch a.menu.Handle(ev) {
	case menu.ActionClose:
		a.menuOpen = false
	case menu.ActionLive:
		a.menuOpen = false
		return a.switchBrowse(content.KindChannel)
	case menu.ActionMovies:
		a.menuOpen = false
		return a.switchBrowse(content.KindMovie)
	case menu.ActionSeries:
		a.menuOpen = false
		return a.switchBrowse(content.KindSeries)
	case menu.ActionSearch:
		a.menuOpen = false
		if a.searchScreen != nil {
			a.searchScreen.Reset()
			a.pushMode(modeSearch)
		}
	case menu.ActionResume:
		a.menuOpen = false
		if a.resumeScreen != nil {
			a.pushMode(modeResume)
			return a.resumeScreen.Load()
		}
	case menu.ActionGroupCode:
		a.menuOpen = false
		a.modal = modalGroupCode
		a.groupKeyboard.Reset()
		if a.sess != nil {
			a.groupKeyboard.SetValue(a.sess.GroupCode)
		}
	case menu.ActionLogout:
		a.menuOpen = false
		a.modal = modalLogout
		a.logoutFocus = 0
	}
	return nil
}

func (a *App) switchBrowse(kind content.Kind) tea.Cmd {
	if a.browseScreen[kind] == nil {
		return nil
	}
	if cur := a.activeBrowse(); cur != nil && a.mode == modeBrowse {
		cur.SaveState()
	}
	a.browseKind = kind
	a.mode = modeBrowse
	a.history = nil
	return a.activeBrowse().Load()
}

// handleMediaKey forwards transport keys straight to the engine.
func (a *App) handleMediaKey(ev input.Event) tea.Cmd {
	engine := a.deps.Engine
	if engine.State() == playback.StateIdle {
		return nil
	}
	ctx := context.Background()
	switch ev.Code {
	case input.KeyMediaPlayPause:
		_ = engine.TogglePause(ctx)
	case input.KeyMediaStop:
		engine.Stop()
		if a.mode == modePlayer {
			a.popMode()
		}
	case input.KeyMediaRewind:
		_ = engine.SeekBack(ctx)
	case input.KeyMediaFastFwd:
		_ = engine.SeekForward(ctx)
	}
	return nil
}

// handlePlayerKey owns keys while the player screen is up.
func (a *App) handlePlayerKey(ev input.Event) tea.Cmd {
	engine := a.deps.Engine

	if engine.State() == playback.StateError {
		switch {
		case ev.Code == input.KeyLeft:
			a.player.MoveErrorFocus(-1)
		case ev.Code == input.KeyRight:
			a.player.MoveErrorFocus(1)
		case ev.Code == input.KeyEnter:
			if a.player.ErrorFocus() == 0 {
				return a.retryPlayback()
			}
			engine.Dismiss()
			a.popMode()
		case ev.IsBack():
			engine.Dismiss()
			a.popMode()
		}
		return nil
	}

	switch {
	case ev.IsBack():
		engine.Stop()
		a.popMode()
		return nil
	case ev.IsMedia():
		return a.handleMediaKey(ev)
	case ev.Rune == 'c':
		url := engine.Intent().URL
		return func() tea.Msg {
			return common.ClipboardCopiedMsg{Err: clipboard.Copy(url)}
		}
	}
	return nil
}

func (a *App) retryPlayback() tea.Cmd {
	engine := a.deps.Engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := engine.Retry(ctx); err != nil {
			return common.StatusMsg{Text: "Retry failed: " + err.Error(), IsErr: true}
		}
		return nil
	}
}

// handleModal owns every key while a modal is open.
func (a *App) handleModal(ev input.Event) tea.Cmd {
	switch a.modal {
	case modalPasscode:
		return a.handlePasscode(ev)
	case modalGroupCode:
		return a.handleGroupCode(ev)
	case modalLogout:
		return a.handleLogoutConfirm(ev)
	}
	return nil
}

func (a *App) handlePasscode(ev input.Event) tea.Cmd {
	switch {
	case ev.IsBack():
		a.modal = modalNone
		if b := a.activeBrowse(); b != nil {
			b.CancelPending()
		}
		return nil

	case ev.IsDirectional():
		a.passcodeKeyboard.Move(toDirection(ev.Code))
		return nil

	case ev.Code == input.KeyEnter:
		action := a.passcodeKeyboard.Press()
		if action != focus.KeyboardDone && len(a.passcodeKeyboard.Value()) < passcodeLength {
			return nil
		}
		code := a.passcodeKeyboard.Value()
		if a.resolver == nil || !resolve.VerifyPasscode(code) {
			a.passcodeError = true
			a.passcodeKeyboard.Reset()
			return nil
		}
		a.modal = modalNone
		a.passcodeError = false
		if b := a.activeBrowse(); b != nil && a.pendingPasscodeCat != "" {
			cat := a.pendingPasscodeCat
			a.pendingPasscodeCat = ""
			return b.Unlock(cat)
		}
		return nil

	case ev.Rune >= '0' && ev.Rune <= '9':
		if a.passcodeKeyboard.Type(ev.Rune) == focus.KeyboardTyped &&
			len(a.passcodeKeyboard.Value()) == passcodeLength {
			return a.handlePasscode(input.Event{Code: input.KeyEnter})
		}
		return nil
	}
	return nil
}

func (a *App) handleGroupCode(ev input.Event) tea.Cmd {
	switch {
	case ev.IsBack():
		a.modal = modalNone
		return nil

	case ev.IsDirectional():
		a.groupKeyboard.Move(toDirection(ev.Code))
		return nil

	case ev.Code == input.KeyEnter:
		if a.groupKeyboard.Press() != focus.KeyboardDone {
			return nil
		}
		code := session.NormalizeGroupCode(a.groupKeyboard.Value())
		a.modal = modalNone
		if a.sess != nil {
			a.sess.GroupCode = code
			_ = a.deps.Session.Save(a.sess)
		}
		return status("Group code updated", false)

	case ev.Rune != 0:
		a.groupKeyboard.Type(ev.Rune)
		return nil
	}
	return nil
}

func (a *App) handleLogoutConfirm(ev input.Event) tea.Cmd {
	switch {
	case ev.IsBack():
		a.modal = modalNone
		return nil
	case ev.Code == input.KeyLeft:
		a.logoutFocus = 0
	case ev.Code == input.KeyRight:
		a.logoutFocus = 1
	case ev.Code == input.KeyEnter:
		a.modal = modalNone
		if a.logoutFocus == 1 {
			return a.logout()
		}
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
