package search

import (
	"net/http"
	"net/http/httptest"
	"testing"

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

// portalHandler serves a small mixed catalog.
func portalHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("action") {
		case "get_live_streams":
			_, _ = w.Write([]byte(`[
				{"stream_id": "1", "name": "Heat FM", "category_id": "1"}
			]`))
		case "get_vod_streams":
			_, _ = w.Write([]byte(`[
				{"stream_id": "10", "name": "Heat", "category_id": "2", "container_extension": "mkv"},
				{"stream_id": "11", "name": "Collateral", "category_id": "2"}
			]`))
		case "get_series":
			_, _ = w.Write([]byte(`[
				{"series_id": "7", "name": "Heatwave", "category_id": "3"}
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
	return New(Deps{Client: client, Resolver: resolve.New(client, progress.NewService(db))})
}

func typeQuery(m *Model, q string) {
	for _, r := range q {
		m.Handle(input.Event{Rune: r})
	}
}

// submit moves the virtual cursor onto ↵ and confirms, then folds the
// search result back in.
func submit(t *testing.T, m *Model) common.SearchResultsMsg {
	t.Helper()
	m.keyboard.Row = len(m.keyboard.Layout) - 1
	m.keyboard.Col = 2
	cmd, sig := m.Handle(input.Event{Code: input.KeyEnter})
	require.Equal(t, SignalNone, sig)
	require.NotNil(t, cmd)

	msg, ok := cmd().(common.SearchResultsMsg)
	require.True(t, ok)
	m.Update(msg)
	return msg
}

func TestSearchRanksAcrossKinds(t *testing.T) {
	m := newModel(t)
	typeQuery(m, "heat")
	msg := submit(t, m)

	require.NoError(t, msg.Err)
	require.NotEmpty(t, m.results)
	assert.Equal(t, zoneResults, m.zone)
	assert.False(t, m.Typing())

	names := make([]string, len(m.results))
	for i, it := range m.results {
		names[i] = it.Name
	}
	assert.Contains(t, names, "Heat")
	assert.Contains(t, names, "Heat FM")
	assert.Contains(t, names, "Heatwave")
	assert.NotContains(t, names, "Collateral")
}

func TestStaleResultsDropped(t *testing.T) {
	m := newModel(t)
	typeQuery(m, "heat")
	m.gen = 5

	m.Update(common.SearchResultsMsg{Query: "heat", Gen: 4, Items: []content.Item{{ID: "x"}}})
	assert.Empty(t, m.results)
	assert.Equal(t, zoneKeyboard, m.zone)
}

func TestBackDeletesThenExits(t *testing.T) {
	m := newModel(t)
	typeQuery(m, "hi")

	_, sig := m.Handle(input.Event{Code: input.KeyEsc})
	assert.Equal(t, SignalNone, sig)
	assert.Equal(t, "h", m.keyboard.Value())

	m.Handle(input.Event{Code: input.KeyEsc})
	_, sig = m.Handle(input.Event{Code: input.KeyEsc})
	assert.Equal(t, SignalBack, sig)
}

func TestResultConfirmResolvesMovie(t *testing.T) {
	m := newModel(t)
	typeQuery(m, "heat")
	submit(t, m)

	// Focus the movie row and confirm.
	for i, it := range m.results {
		if it.Kind == content.KindMovie {
			for j := 0; j < i; j++ {
				m.Handle(input.Event{Code: input.KeyRight})
			}
			break
		}
	}
	cmd, sig := m.Handle(input.Event{Code: input.KeyEnter})
	assert.Equal(t, SignalNone, sig)
	require.NotNil(t, cmd)

	play, ok := cmd().(common.PlayRequestMsg)
	require.True(t, ok)
	assert.Equal(t, "10", play.ItemID)
	assert.Contains(t, play.Intent.URL, "/movie/alice/s3cret/10.mkv")
}

func TestUpFromResultsReturnsToKeyboard(t *testing.T) {
	m := newModel(t)
	typeQuery(m, "heat")
	submit(t, m)
	require.Equal(t, zoneResults, m.zone)

	m.Handle(input.Event{Code: input.KeyUp})
	assert.Equal(t, zoneKeyboard, m.zone)
	assert.True(t, m.Typing())
}

func TestResetClearsQueryAndResults(t *testing.T) {
	m := newModel(t)
	typeQuery(m, "heat")
	submit(t, m)

	m.Reset()
	assert.Empty(t, m.keyboard.Value())
	assert.Empty(t, m.results)
	assert.Equal(t, zoneKeyboard, m.zone)
}
