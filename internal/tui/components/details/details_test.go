package details

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/database"
	"github.com/teleview/teleview/internal/input"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/resolve"
	"github.com/teleview/teleview/internal/tui/common"
	"github.com/teleview/teleview/internal/xtream"
)

// seriesHandler serves one series with two seasons.
func seriesHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("action") != "get_series_info" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`{
			"info": {"name": "Dark Harbor", "plot": "A slow-burn mystery."},
			"episodes": {
				"1": [
					{"id": "101", "episode_num": 1, "title": "Arrival", "container_extension": "mkv"},
					{"id": "102", "episode_num": 2, "title": "Undertow"}
				],
				"2": [
					{"id": "201", "episode_num": 1, "title": "Anchor"}
				]
			}
		}`))
	}
}

func newModel(t *testing.T) (*Model, *progress.Service) {
	t.Helper()
	srv := httptest.NewServer(seriesHandler(t))
	t.Cleanup(srv.Close)

	db, err := database.OpenInMemory()
	require.NoError(t, err)

	client := xtream.NewClient(xtream.Credentials{
		BaseURL: srv.URL, Username: "alice", Password: "s3cret",
	})
	prog := progress.NewService(db)
	return New(Deps{
		Client:   client,
		Resolver: resolve.New(client, prog),
		Progress: prog,
	}), prog
}

// openSeries runs Open to completion and folds the result in.
func openSeries(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.Open("7", "Dark Harbor")
	require.NotNil(t, cmd)
	msg, ok := cmd().(common.SeriesLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	m.Update(msg)
}

func TestOpenLoadsSeasonsAndEpisodes(t *testing.T) {
	m, _ := newModel(t)
	openSeries(t, m)

	require.NotNil(t, m.info)
	assert.Equal(t, []int{1, 2}, m.info.Seasons)
	assert.Len(t, m.info.Episodes[1], 2)
	assert.Equal(t, regionActions, m.machine.Active())
}

func TestEpisodeConfirmEmitsPlayRequest(t *testing.T) {
	m, _ := newModel(t)
	openSeries(t, m)

	m.machine.SetActive(regionEpisodes)
	cmd, sig := m.Handle(input.Event{Code: input.KeyEnter})
	assert.Equal(t, SignalNone, sig)
	require.NotNil(t, cmd)

	play, ok := cmd().(common.PlayRequestMsg)
	require.True(t, ok)
	assert.Equal(t, "101", play.ItemID)
	assert.Equal(t, content.KindEpisode, play.Intent.Kind)
	require.NotNil(t, play.Intent.Series)
	require.NotNil(t, play.Intent.Series.Next)
	assert.Equal(t, "102", play.Intent.Series.Next.EpisodeID)
}

func TestBackCollapsesBeforeLeaving(t *testing.T) {
	m, _ := newModel(t)
	openSeries(t, m)

	m.machine.SetActive(regionEpisodes)

	// First Back climbs to the action row, second one leaves.
	_, sig := m.Handle(input.Event{Code: input.KeyEsc})
	assert.Equal(t, SignalNone, sig)
	assert.Equal(t, regionActions, m.machine.Active())

	_, sig = m.Handle(input.Event{Code: input.KeyEsc})
	assert.Equal(t, SignalBack, sig)
}

func TestSeasonMoveReloadsEpisodeGrid(t *testing.T) {
	m, _ := newModel(t)
	openSeries(t, m)

	m.machine.SetActive(regionSeasons)
	_, sig := m.Handle(input.Event{Code: input.KeyRight})
	assert.Equal(t, SignalNone, sig)

	season, eps := m.selectedSeason()
	assert.Equal(t, 2, season)
	assert.Len(t, eps, 1)
}

func TestResumeActionAppearsForPartialEpisode(t *testing.T) {
	m, prog := newModel(t)

	key := content.SeriesProgressKey("7", 1, "101")
	require.NoError(t, prog.Save(key, 600*time.Second, 2400*time.Second, progress.Meta{
		Title:         "Arrival",
		Kind:          content.KindEpisode,
		SeriesID:      "7",
		SeriesName:    "Dark Harbor",
		Season:        1,
		EpisodeID:     "101",
		EpisodeNumber: 1,
	}))
	openSeries(t, m)

	acts := m.actions()
	require.Len(t, acts, 2)
	assert.Contains(t, acts[1].label, "Resume S01E01")
	assert.Equal(t, 1, m.watchedState(1, m.info.Episodes[1][0]))
}
