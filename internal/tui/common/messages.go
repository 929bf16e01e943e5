package common

import (
	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/epg"
	"github.com/teleview/teleview/internal/playback"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/xtream"
)

// This file contains the tea.Msg types components and the router
// exchange. Components never mutate each other; everything crosses
// these messages.

// BackMsg asks the router to pop the navigation history.
type BackMsg struct{}

// CategoriesLoadedMsg delivers a browse screen's category list. Gen is
// the fetch generation; stale generations are dropped.
type CategoriesLoadedMsg struct {
	Kind       content.Kind
	Categories []content.Category
	Gen        uint64
	Err        error
}

// ItemsLoadedMsg delivers the contents of one category.
type ItemsLoadedMsg struct {
	Kind       content.Kind
	CategoryID string
	Items      []content.Item
	Gen        uint64
	Err        error
}

// SeriesLoadedMsg delivers a series detail fetch.
type SeriesLoadedMsg struct {
	SeriesID string
	Info     *xtream.SeriesInfo
	Err      error
}

// SearchResultsMsg delivers a catalog search.
type SearchResultsMsg struct {
	Query string
	Items []content.Item
	Gen   uint64
	Err   error
}

// ResumeEntriesMsg delivers the continue-watching shelf.
type ResumeEntriesMsg struct {
	Records []progress.Record
	Err     error
}

// PlayRequestMsg asks the router to hand an intent to the engine.
type PlayRequestMsg struct {
	Intent content.StreamIntent
	ItemID string
}

// OpenSeriesMsg asks the router to navigate to series details.
type OpenSeriesMsg struct {
	SeriesID string
	Name     string
	Origin   content.Kind
}

// PasscodeRequiredMsg asks the router to open the passcode modal; the
// pending selection replays once the passcode verifies.
type PasscodeRequiredMsg struct {
	CategoryID string
}

// EngineEventMsg wraps a playback engine notification into the tea
// update loop.
type EngineEventMsg struct {
	Event playback.Event
}

// LoginSubmitMsg carries the filled login form to the router.
type LoginSubmitMsg struct {
	PortalURL string
	Username  string
	Password  string
}

// AuthResultMsg delivers an authentication probe.
type AuthResultMsg struct {
	Account *xtream.Account
	Err     error
}

// PendingPollTickMsg drives the pending-approval re-probe ticker.
type PendingPollTickMsg struct{}

// EPGRefreshedMsg reports a guide refresh attempt.
type EPGRefreshedMsg struct {
	Err error
}

// NowNextMsg delivers the guide pair for the focused channel.
type NowNextMsg struct {
	ChannelID string
	NowNext   epg.NowNext
}

// FavoriteToggledMsg reports a favorites change so grids can re-badge.
type FavoriteToggledMsg struct {
	Key      string
	Favorite bool
	Err      error
}

// StatusMsg shows a transient status line.
type StatusMsg struct {
	Text  string
	IsErr bool
}

// ClearStatusMsg clears the transient status line.
type ClearStatusMsg struct{}

// ClipboardCopiedMsg reports a stream-URL copy.
type ClipboardCopiedMsg struct {
	Err error
}

// ConfigReloadedMsg reports a hot config reload.
type ConfigReloadedMsg struct{}
