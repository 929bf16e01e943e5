package browse

import (
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/database"
	"github.com/teleview/teleview/internal/epg"
	"github.com/teleview/teleview/internal/favorites"
	"github.com/teleview/teleview/internal/input"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/resolve"
	"github.com/teleview/teleview/internal/screenstate"
	"github.com/teleview/teleview/internal/tui/common"
	"github.com/teleview/teleview/internal/xtream"
)

// portalHandler serves a tiny movies catalog.
func portalHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("action") {
		case "get_vod_categories":
			_, _ = w.Write([]byte(`[
				{"category_id": "1", "category_name": "Action"},
				{"category_id": "2", "category_name": "xxx After Dark"}
			]`))
		case "get_vod_streams":
			_, _ = w.Write([]byte(`[
				{"stream_id": "10", "name": "Heat", "category_id": "1", "container_extension": "mkv", "rating": "8.3", "year": "1995"},
				{"stream_id": "11", "name": "Ronin", "category_id": "1"}
			]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}
}

func newModel(t *testing.T) *Model {
	t.Helper()
	srv := httptest.NewServer(portalHandler(t))
	t.Cleanup(srv.Close)

	db, err := database.OpenInMemory()
	require.NoError(t, err)

	client := xtream.NewClient(xtream.Credentials{
		BaseURL: srv.URL, Username: "alice", Password: "s3cret",
	})
	prog := progress.NewService(db)
	return New(content.KindMovie, Deps{
		Client:    client,
		Resolver:  resolve.New(client, prog),
		Favorites: favorites.NewService(db),
		EPG:       epg.NewService(client.XMLTVURL(), 0),
		States:    screenstate.NewStore(db),
		Columns:   2,
		Rows:      2,
	})
}

// drain runs a command chain to completion, feeding every produced
// message back into the model and collecting router-bound messages.
func drain(t *testing.T, m *Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var routed []tea.Msg
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		switch msg.(type) {
		case common.CategoriesLoadedMsg, common.ItemsLoadedMsg,
			common.NowNextMsg, common.FavoriteToggledMsg:
			cmd = m.Update(msg)
		default:
			routed = append(routed, msg)
			cmd = nil
		}
	}
	return routed
}

func loadScreen(t *testing.T, m *Model) {
	t.Helper()
	drain(t, m, m.Load())
}

func TestLoadPopulatesCategoriesAndGrid(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)

	require.Len(t, m.categories, 2)
	assert.Equal(t, "Action", m.categories[0].Name)
	assert.True(t, m.categories[1].Protected)
	assert.Len(t, m.items, 2)
	assert.Len(t, m.visible, 2)
}

func TestStaleGenerationDropped(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)

	stale := common.ItemsLoadedMsg{
		Kind: content.KindMovie, CategoryID: "1",
		Items: []content.Item{{ID: "99", Name: "Stale"}},
		Gen:   m.gen - 1,
	}
	m.Update(stale)
	assert.Len(t, m.items, 2, "stale fetch must not replace items")
}

func TestWrongKindDropped(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)

	m.Update(common.ItemsLoadedMsg{Kind: content.KindChannel, Gen: m.gen})
	assert.Len(t, m.items, 2)
}

func TestEnterOnMovieEmitsPlayRequest(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)
	m.machine.SetActive(regionGrid)

	cmd, sig := m.Handle(input.Event{Code: input.KeyEnter})
	assert.Equal(t, SignalNone, sig)
	require.NotNil(t, cmd)

	msg := cmd()
	play, ok := msg.(common.PlayRequestMsg)
	require.True(t, ok)
	assert.Equal(t, "10", play.ItemID)
	assert.Contains(t, play.Intent.URL, "/movie/alice/s3cret/10.mkv")
}

func TestPreviewShowsYearAndRating(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)
	m.machine.SetActive(regionGrid)

	out := m.viewPreview()
	assert.Contains(t, out, "1995")
	assert.Contains(t, out, "★ 8.3")
}

func TestProtectedCategoryRequiresPasscode(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)

	// Move the category cursor onto the protected category and open it.
	m.Handle(input.Event{Code: input.KeyDown})
	drain(t, m, nil)
	cmd, _ := m.Handle(input.Event{Code: input.KeyEnter})
	drain(t, m, cmd)

	m.machine.SetActive(regionGrid)
	cmd, _ = m.Handle(input.Event{Code: input.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	gate, ok := msg.(common.PasscodeRequiredMsg)
	require.True(t, ok)
	assert.Equal(t, "2", gate.CategoryID)

	// Verified passcode replays the held selection.
	replay := m.Unlock("2")
	require.NotNil(t, replay)
	_, ok = replay().(common.PlayRequestMsg)
	assert.True(t, ok)
}

func TestLeftAtSidebarSignalsMenu(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)

	_, sig := m.Handle(input.Event{Code: input.KeyLeft})
	assert.Equal(t, SignalMenu, sig)
}

func TestFavoriteToggleSynthesizesCategory(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)
	m.machine.SetActive(regionGrid)

	cmd, _ := m.Handle(input.Event{Rune: 'f'})
	require.NotNil(t, cmd)
	drain(t, m, cmd)

	require.NotEmpty(t, m.categories)
	assert.Equal(t, FavoritesCategoryID, m.categories[0].ID)
	assert.True(t, m.favKeys[content.FavoriteKey(content.KindMovie, "10")])
}

func TestBackSignalsRouter(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)

	_, sig := m.Handle(input.Event{Code: input.KeyBack})
	assert.Equal(t, SignalBack, sig)
}

func TestBackFromGridCollapsesToCategories(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)
	m.machine.SetActive(regionGrid)

	// First Back retreats to the category rail, second one leaves.
	_, sig := m.Handle(input.Event{Code: input.KeyBack})
	assert.Equal(t, SignalNone, sig)
	assert.Equal(t, regionCategories, m.machine.Active())

	_, sig = m.Handle(input.Event{Code: input.KeyBack})
	assert.Equal(t, SignalBack, sig)
}

// seriesPortalHandler serves a one-series catalog with two episodes.
func seriesPortalHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("action") {
		case "get_series_categories":
			_, _ = w.Write([]byte(`[{"category_id": "3", "category_name": "Drama"}]`))
		case "get_series":
			_, _ = w.Write([]byte(`[{"series_id": "7", "name": "Dark Harbor", "category_id": "3"}]`))
		case "get_series_info":
			assert.Equal(t, "7", r.URL.Query().Get("series_id"))
			_, _ = w.Write([]byte(`{
				"info": {"name": "Dark Harbor"},
				"episodes": {"1": [
					{"id": "101", "episode_num": 1, "title": "Arrival", "container_extension": "mkv"},
					{"id": "102", "episode_num": 2, "title": "Undertow"}
				]}
			}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}
}

func newSeriesModel(t *testing.T) *Model {
	t.Helper()
	srv := httptest.NewServer(seriesPortalHandler(t))
	t.Cleanup(srv.Close)

	db, err := database.OpenInMemory()
	require.NoError(t, err)

	client := xtream.NewClient(xtream.Credentials{
		BaseURL: srv.URL, Username: "alice", Password: "s3cret",
	})
	prog := progress.NewService(db)
	return New(content.KindSeries, Deps{
		Client:    client,
		Resolver:  resolve.New(client, prog),
		Favorites: favorites.NewService(db),
		EPG:       epg.NewService(client.XMLTVURL(), 0),
		States:    screenstate.NewStore(db),
		Columns:   2,
		Rows:      2,
	})
}

func TestDirectPlayOnSeriesStartsFirstEpisode(t *testing.T) {
	m := newSeriesModel(t)
	loadScreen(t, m)
	m.machine.SetActive(regionGrid)

	cmd, sig := m.Handle(input.Event{Code: input.KeyPlay})
	assert.Equal(t, SignalNone, sig)
	require.NotNil(t, cmd)

	msg := cmd()
	play, ok := msg.(common.PlayRequestMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "101", play.ItemID)
	assert.Contains(t, play.Intent.URL, "/series/alice/s3cret/101.mkv")
	require.NotNil(t, play.Intent.Series)
	require.NotNil(t, play.Intent.Series.Next)
	assert.Equal(t, "102", play.Intent.Series.Next.EpisodeID)
}

func TestStateRestoredAcrossReload(t *testing.T) {
	m := newModel(t)
	loadScreen(t, m)
	m.machine.SetActive(regionGrid)
	m.Handle(input.Event{Code: input.KeyRight})
	m.SaveState()

	fresh := New(content.KindMovie, m.deps)
	loadScreen(t, fresh)
	assert.Equal(t, 1, fresh.machine.Abs(regionGrid))
}
