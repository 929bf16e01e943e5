package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gorm.io/gorm"

	"github.com/teleview/teleview/internal/config"
	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/epg"
	"github.com/teleview/teleview/internal/favorites"
	"github.com/teleview/teleview/internal/focus"
	"github.com/teleview/teleview/internal/playback"
	"github.com/teleview/teleview/internal/player"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/resolve"
	"github.com/teleview/teleview/internal/screenstate"
	"github.com/teleview/teleview/internal/session"
	"github.com/teleview/teleview/internal/tui/common"
	"github.com/teleview/teleview/internal/tui/components/auth"
	"github.com/teleview/teleview/internal/tui/components/browse"
	"github.com/teleview/teleview/internal/tui/components/details"
	"github.com/teleview/teleview/internal/tui/components/menu"
	"github.com/teleview/teleview/internal/tui/components/playerview"
	"github.com/teleview/teleview/internal/tui/components/resume"
	"github.com/teleview/teleview/internal/tui/components/search"
	"github.com/teleview/teleview/internal/xtream"
)

// appMode is which screen owns the main area.
type appMode int

const (
	modeAuth appMode = iota
	modeBrowse
	modeDetails
	modeSearch
	modeResume
	modePlayer
	modeTerms
)

// modalKind is which modal, if any, sits on top of the screen and owns
// every key until dismissed.
type modalKind int

const (
	modalNone modalKind = iota
	modalPasscode
	modalGroupCode
	modalLogout
)

const (
	passcodeLength  = 4
	pendingPollRate = 15 * time.Second
	statusLinger    = 3 * time.Second
	authTimeout     = 20 * time.Second
)

// Deps is everything the TUI needs from the outside.
type Deps struct {
	Config *config.Config
	// Reloads fires when the config file changed on disk; Config has
	// already been updated in place when it does.
	Reloads  <-chan struct{}
	DB       *gorm.DB
	Session  *session.Store
	Engine   *playback.Engine
	Progress *progress.Service
	Favorite *favorites.Service
	States   *screenstate.Store
}

// App is the root bubbletea model: it owns mode switching, the modal
// stack, the navigation history and the engine event pump. Screens
// never talk to each other directly.
type App struct {
	deps Deps

	mode    appMode
	history []appMode
	width   int
	height  int

	// client and the services derived from it exist only while a
	// session's credentials are known.
	client   *xtream.Client
	resolver *resolve.Resolver
	epg      *epg.Service
	sess     *session.Context

	authScreen   auth.Model
	menu         menu.Model
	menuOpen     bool
	browseScreen map[content.Kind]*browse.Model
	browseKind   content.Kind
	detailScreen *details.Model
	searchScreen *search.Model
	resumeScreen *resume.Model
	player       playerview.Model

	modal              modalKind
	passcodeKeyboard   *focus.Keyboard
	passcodeError      bool
	pendingPasscodeCat string
	groupKeyboard      *focus.Keyboard
	logoutFocus        int // 0 cancel, 1 confirm

	statusText  string
	statusIsErr bool
}

// NewApp wires the root model. The session context decides whether the
// UI starts at the login form or goes straight to the live screen.
func NewApp(deps Deps) *App {
	a := &App{
		deps:             deps,
		mode:             modeAuth,
		menu:             menu.New(),
		player:           playerview.New(),
		browseScreen:     map[content.Kind]*browse.Model{},
		browseKind:       content.KindChannel,
		passcodeKeyboard: focus.NewKeyboard(focus.DigitLayout, passcodeLength),
		groupKeyboard:    focus.NewKeyboard(focus.DefaultLayout, 20),
	}

	sess, err := deps.Session.Load()
	a.sess = sess
	a.authScreen = auth.New(prefillPortal(deps.Config, sess), prefillUser(sess))
	if err == nil && sess.Configured() {
		a.bindPortal(sess.PortalURL, sess.Username, sess.Password)
		a.mode = modeBrowse
	}
	if sess == nil || !sess.AcceptedTerms {
		a.mode = modeTerms
	}
	return a
}

// acceptTerms records the accepted-terms flag, which survives logout,
// and moves on to login or the catalog.
func (a *App) acceptTerms() tea.Cmd {
	if a.sess == nil {
		a.sess = &session.Context{Status: session.StatusUnconfigured}
	}
	a.sess.AcceptedTerms = true
	_ = a.deps.Session.Save(a.sess)

	if a.client != nil && a.sess.Configured() {
		a.mode = modeBrowse
		return tea.Batch(a.activeBrowse().Load(), a.refreshEPG(false))
	}
	a.mode = modeAuth
	return a.authScreen.Tick()
}

func prefillPortal(cfg *config.Config, sess *session.Context) string {
	if sess != nil && sess.PortalURL != "" {
		return sess.PortalURL
	}
	if cfg != nil {
		return cfg.Portal.URL
	}
	return ""
}

func prefillUser(sess *session.Context) string {
	if sess != nil {
		return sess.Username
	}
	return ""
}

// bindPortal builds the client and every service hanging off it.
func (a *App) bindPortal(portalURL, username, password string) {
	a.client = xtream.NewClient(xtream.Credentials{
		BaseURL:  portalURL,
		Username: username,
		Password: password,
	})
	a.resolver = resolve.New(a.client, a.deps.Progress)

	ttl := 6 * time.Hour
	if a.deps.Config != nil && a.deps.Config.EPG.RefreshTTL > 0 {
		ttl = a.deps.Config.EPG.RefreshTTL
	}
	a.epg = epg.NewService(a.client.XMLTVURL(), ttl)

	cols, rows := 5, 3
	if a.deps.Config != nil {
		if a.deps.Config.UI.GridColumns > 0 {
			cols = a.deps.Config.UI.GridColumns
		}
		if a.deps.Config.UI.GridRows > 0 {
			rows = a.deps.Config.UI.GridRows
		}
	}
	bdeps := browse.Deps{
		Client:    a.client,
		Resolver:  a.resolver,
		Favorites: a.deps.Favorite,
		EPG:       a.epg,
		States:    a.deps.States,
		Columns:   cols,
		Rows:      rows,
	}
	for _, kind := range []content.Kind{content.KindChannel, content.KindMovie, content.KindSeries} {
		a.browseScreen[kind] = browse.New(kind, bdeps)
	}
	a.detailScreen = details.New(details.Deps{
		Client:   a.client,
		Resolver: a.resolver,
		Progress: a.deps.Progress,
	})
	a.searchScreen = search.New(search.Deps{Client: a.client, Resolver: a.resolver})
	a.resumeScreen = resume.New(resume.Deps{Progress: a.deps.Progress, Resolver: a.resolver})
}

func (a *App) activeBrowse() *browse.Model {
	return a.browseScreen[a.browseKind]
}

// Init starts the engine pump and either the login spinner or the
// first catalog load.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.listenEngine(), a.authScreen.Tick(), a.player.Tick()}
	if a.deps.Reloads != nil {
		cmds = append(cmds, a.listenReloads())
	}
	if a.mode == modeBrowse {
		cmds = append(cmds, a.activeBrowse().Load(), a.refreshEPG(false))
	}
	return tea.Batch(cmds...)
}

// listenReloads blocks on the config watcher channel; the handler
// re-arms it.
func (a *App) listenReloads() tea.Cmd {
	reloads := a.deps.Reloads
	return func() tea.Msg {
		if _, ok := <-reloads; !ok {
			return nil
		}
		return common.ConfigReloadedMsg{}
	}
}

// refreshEPG schedules a guide download when live EPG is enabled.
func (a *App) refreshEPG(force bool) tea.Cmd {
	if a.epg == nil || (a.deps.Config != nil && !a.deps.Config.EPG.Enabled) {
		return nil
	}
	svc := a.epg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return common.EPGRefreshedMsg{Err: svc.Refresh(ctx, force)}
	}
}

// Update is the root message loop.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		for _, b := range a.browseScreen {
			b.SetSize(msg.Width, msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case common.EngineEventMsg:
		return a, a.handleEngineEvent(msg.Event)

	case common.PlayRequestMsg:
		return a, a.startPlayback(msg.Intent, msg.ItemID)

	case common.OpenSeriesMsg:
		a.pushMode(modeDetails)
		return a, a.detailScreen.Open(msg.SeriesID, msg.Name)

	case common.PasscodeRequiredMsg:
		a.modal = modalPasscode
		a.passcodeKeyboard.Reset()
		a.passcodeError = false
		a.pendingPasscodeCat = msg.CategoryID
		return a, nil

	case common.BackMsg:
		a.popMode()
		return a, nil

	case common.LoginSubmitMsg:
		return a, a.authenticate(msg.PortalURL, msg.Username, msg.Password)

	case common.AuthResultMsg:
		return a, a.handleAuthResult(msg)

	case common.PendingPollTickMsg:
		if a.authScreen.Phase() == auth.PhasePending && a.sess != nil {
			return a, tea.Batch(
				a.authenticate(a.sess.PortalURL, a.sess.Username, a.sess.Password),
				a.pendingPoll(),
			)
		}
		return a, nil

	case common.StatusMsg:
		a.statusText = msg.Text
		a.statusIsErr = msg.IsErr
		return a, tea.Tick(statusLinger, func(time.Time) tea.Msg { return common.ClearStatusMsg{} })

	case common.ClearStatusMsg:
		a.statusText = ""
		return a, nil

	case common.ClipboardCopiedMsg:
		if msg.Err != nil {
			return a, status("Copy failed: "+msg.Err.Error(), true)
		}
		return a, status("Stream URL copied", false)

	case common.ConfigReloadedMsg:
		if cfg := a.deps.Config; cfg != nil {
			a.deps.Engine.SetPlayerDefaults(player.Options{
				Volume:     cfg.Player.Volume,
				Fullscreen: cfg.Player.Fullscreen,
				UserAgent:  cfg.Player.UserAgent,
			})
		}
		return a, tea.Batch(a.listenReloads(), status("Configuration reloaded", false))

	case common.CategoriesLoadedMsg:
		if b := a.browseScreen[msg.Kind]; b != nil {
			return a, b.Update(msg)
		}
		return a, nil

	case common.ItemsLoadedMsg:
		if b := a.browseScreen[msg.Kind]; b != nil {
			return a, b.Update(msg)
		}
		return a, nil

	case common.NowNextMsg, common.FavoriteToggledMsg:
		if b := a.activeBrowse(); b != nil {
			return a, b.Update(msg)
		}
		return a, nil

	case common.EPGRefreshedMsg:
		if b := a.browseScreen[content.KindChannel]; b != nil {
			return a, b.Update(msg)
		}
		return a, nil

	case common.SeriesLoadedMsg:
		if a.detailScreen != nil {
			return a, a.detailScreen.Update(msg)
		}
		return a, nil

	case common.SearchResultsMsg:
		if a.searchScreen != nil {
			return a, a.searchScreen.Update(msg)
		}
		return a, nil

	case common.ResumeEntriesMsg:
		if a.resumeScreen != nil {
			return a, a.resumeScreen.Update(msg)
		}
		return a, nil
	}

	// Spinner ticks and other component-internal messages.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.authScreen, cmd = a.authScreen.Update(msg)
	cmds = append(cmds, cmd)
	a.player, cmd = a.player.Update(msg)
	cmds = append(cmds, cmd)
	if b := a.activeBrowse(); b != nil && a.mode == modeBrowse {
		cmds = append(cmds, b.Update(msg))
	}
	return a, tea.Batch(cmds...)
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return common.StatusMsg{Text: text, IsErr: isErr} }
}

// authenticate probes the portal and reports an AuthResultMsg. The
// client is rebound before probing so a failed login can change the
// portal URL.
func (a *App) authenticate(portalURL, username, password string) tea.Cmd {
	a.bindPortal(portalURL, username, password)
	client := a.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		account, err := client.Authenticate(ctx)
		return common.AuthResultMsg{Account: account, Err: err}
	}
}

func (a *App) pendingPoll() tea.Cmd {
	return tea.Tick(pendingPollRate, func(time.Time) tea.Msg { return common.PendingPollTickMsg{} })
}

func (a *App) handleAuthResult(msg common.AuthResultMsg) tea.Cmd {
	if msg.Err != nil {
		a.authScreen.SetError(msg.Err.Error())
		a.mode = modeAuth
		return nil
	}

	creds := a.client.Creds()
	sess := &session.Context{
		Username:  creds.Username,
		Password:  creds.Password,
		Token:     creds.Password,
		PortalURL: creds.BaseURL,
	}
	if a.sess != nil {
		sess.GroupCode = a.sess.GroupCode
		sess.AcceptedTerms = a.sess.AcceptedTerms
		sess.DeviceID = a.sess.DeviceID
	}

	switch msg.Account.Status {
	case xtream.AccountActive:
		sess.Status = session.StatusActive
		a.sess = sess
		_ = a.deps.Session.Save(sess)
		a.mode = modeBrowse
		a.history = nil
		a.browseKind = content.KindChannel
		return tea.Batch(a.activeBrowse().Load(), a.refreshEPG(false))

	case xtream.AccountPending:
		sess.Status = session.StatusPending
		a.sess = sess
		_ = a.deps.Session.Save(sess)
		a.mode = modeAuth
		a.authScreen.SetPhase(auth.PhasePending)
		return tea.Batch(a.authScreen.Tick(), a.pendingPoll())

	case xtream.AccountExpired:
		a.authScreen.SetError("Subscription expired. Contact your provider.")
		a.mode = modeAuth
		return nil

	default:
		a.authScreen.SetError("Account is not allowed to sign in.")
		a.mode = modeAuth
		return nil
	}
}

// logout clears the session and returns to the login form. Watch
// progress survives; screen focus does not.
func (a *App) logout() tea.Cmd {
	a.deps.Engine.Stop()
	_ = a.deps.Session.Clear()
	_ = a.deps.States.Clear()
	// Clear keeps the terms flag and device id; pick them back up.
	a.sess, _ = a.deps.Session.Load()
	a.client = nil
	a.resolver = nil
	a.epg = nil
	a.browseScreen = map[content.Kind]*browse.Model{}
	a.detailScreen = nil
	a.searchScreen = nil
	a.resumeScreen = nil
	a.mode = modeAuth
	a.history = nil
	a.menuOpen = false
	a.authScreen = auth.New(prefillPortal(a.deps.Config, nil), "")
	return a.authScreen.Tick()
}
