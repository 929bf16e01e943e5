package tui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/database"
	"github.com/teleview/teleview/internal/favorites"
	"github.com/teleview/teleview/internal/input"
	"github.com/teleview/teleview/internal/playback"
	"github.com/teleview/teleview/internal/player"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/screenstate"
	"github.com/teleview/teleview/internal/session"
	"github.com/teleview/teleview/internal/tui/common"
)

func newApp(t *testing.T, authenticated bool) *App {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	store := session.NewStore(db)
	if authenticated {
		require.NoError(t, store.Save(&session.Context{
			Token:         "s3cret",
			Username:      "alice",
			Password:      "s3cret",
			PortalURL:     "http://portal.example",
			Status:        session.StatusActive,
			AcceptedTerms: true,
		}))
	}

	prog := progress.NewService(db)
	noBackend := func() (player.Backend, error) { return nil, fmt.Errorf("no backend in tests") }
	return NewApp(Deps{
		DB:       db,
		Session:  store,
		Engine:   playback.NewEngine(noBackend, noBackend, prog),
		Progress: prog,
		Favorite: favorites.NewService(db),
		States:   screenstate.NewStore(db),
	})
}

func TestFirstRunShowsTermsThenLogin(t *testing.T) {
	a := newApp(t, false)
	assert.Equal(t, modeTerms, a.mode)
	assert.Nil(t, a.client)

	// Back has nowhere to go on the terms screen.
	a.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeTerms, a.mode)

	a.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeAuth, a.mode)

	// The flag persists even though no credentials are stored yet.
	sess, err := a.deps.Session.Load()
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.True(t, sess.AcceptedTerms)
}

func TestStartsAtBrowseWithStoredSession(t *testing.T) {
	a := newApp(t, true)
	assert.Equal(t, modeBrowse, a.mode)
	require.NotNil(t, a.client)
	assert.Equal(t, content.KindChannel, a.browseKind)
	assert.NotNil(t, a.activeBrowse())
}

func TestHistoryStack(t *testing.T) {
	a := newApp(t, true)

	a.pushMode(modeDetails)
	a.pushMode(modePlayer)
	assert.Equal(t, modePlayer, a.mode)

	a.popMode()
	assert.Equal(t, modeDetails, a.mode)
	a.popMode()
	assert.Equal(t, modeBrowse, a.mode)

	// Popping the empty stack must not strand the user.
	a.popMode()
	assert.Equal(t, modeBrowse, a.mode)
}

func TestCtrlCQuits(t *testing.T) {
	a := newApp(t, true)
	_, cmd := a.handleKeyMsg(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestMenuSwitchesBrowseKind(t *testing.T) {
	a := newApp(t, true)
	a.openMenu()
	require.True(t, a.menuOpen)

	// Live TV → Movies is one step down, then confirm.
	a.handleMenu(input.Event{Code: input.KeyDown})
	a.handleMenu(input.Event{Code: input.KeyEnter})
	assert.False(t, a.menuOpen)
	assert.Equal(t, content.KindMovie, a.browseKind)
	assert.Equal(t, modeBrowse, a.mode)
}

func TestMenuRightCloses(t *testing.T) {
	a := newApp(t, true)
	a.openMenu()
	a.handleMenu(input.Event{Code: input.KeyRight})
	assert.False(t, a.menuOpen)
}

func TestPasscodeModalFlow(t *testing.T) {
	a := newApp(t, true)
	a.Update(common.PasscodeRequiredMsg{CategoryID: "9"})
	assert.Equal(t, modalPasscode, a.modal)
	assert.Equal(t, "9", a.pendingPasscodeCat)

	// Wrong code shows the error and stays open.
	for _, r := range "1111" {
		a.handleModal(input.Event{Rune: r})
	}
	assert.Equal(t, modalPasscode, a.modal)
	assert.True(t, a.passcodeError)

	// The default passcode unlocks.
	for _, r := range "0000" {
		a.handleModal(input.Event{Rune: r})
	}
	assert.Equal(t, modalNone, a.modal)
	assert.False(t, a.passcodeError)
}

func TestPasscodeBackCancels(t *testing.T) {
	a := newApp(t, true)
	a.Update(common.PasscodeRequiredMsg{CategoryID: "9"})
	a.handleModal(input.Event{Code: input.KeyEsc})
	assert.Equal(t, modalNone, a.modal)
}

func TestLogoutClearsSession(t *testing.T) {
	a := newApp(t, true)
	a.openMenu()
	a.modal = modalLogout
	a.logoutFocus = 1
	a.handleModal(input.Event{Code: input.KeyEnter})

	assert.Equal(t, modeAuth, a.mode)
	assert.Nil(t, a.client)

	_, err := a.deps.Session.Load()
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestOpenSeriesPushesDetails(t *testing.T) {
	a := newApp(t, true)
	a.Update(common.OpenSeriesMsg{SeriesID: "5", Name: "Some Show", Origin: content.KindSeries})
	assert.Equal(t, modeDetails, a.mode)

	a.Update(common.BackMsg{})
	assert.Equal(t, modeBrowse, a.mode)
}
