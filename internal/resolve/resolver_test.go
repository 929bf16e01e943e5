package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/database"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/xtream"
)

func newResolver(t *testing.T) (*Resolver, *progress.Service) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	store := progress.NewService(db)
	client := xtream.NewClient(xtream.Credentials{
		BaseURL:  "http://portal.example",
		Username: "u",
		Password: "p",
	})
	return New(client, store), store
}

func TestResolveChannel(t *testing.T) {
	r, _ := newResolver(t)
	out, err := r.Resolve(content.Item{
		ID:        "101",
		Kind:      content.KindChannel,
		Name:      "BBC One",
		StreamURL: "http://portal.example/live/u/p/101.ts",
	}, content.Category{Name: "News"}, false)
	require.NoError(t, err)

	assert.Equal(t, OutcomePlay, out.Kind)
	assert.Equal(t, "101", out.ItemID)
	assert.True(t, out.Intent.IsLive())
	assert.Equal(t, "News", out.Intent.Category)
	assert.Zero(t, out.Intent.ResumeFrom)
}

func TestResolveMovieWithResume(t *testing.T) {
	r, store := newResolver(t)
	require.NoError(t, store.Save("movie:55", 600*time.Second, 7200*time.Second, progress.Meta{
		Title: "Heat", Kind: content.KindMovie,
	}))

	out, err := r.Resolve(content.Item{
		ID:        "55",
		Kind:      content.KindMovie,
		Name:      "Heat",
		StreamURL: "http://portal.example/movie/u/p/55.mkv",
	}, content.Category{Name: "Crime"}, false)
	require.NoError(t, err)

	assert.Equal(t, OutcomePlay, out.Kind)
	assert.Equal(t, 600*time.Second, out.Intent.ResumeFrom)
}

func TestResolveCompletedMovieStartsOver(t *testing.T) {
	r, store := newResolver(t)
	require.NoError(t, store.Save("movie:55", 7000*time.Second, 7200*time.Second, progress.Meta{
		Title: "Heat", Kind: content.KindMovie,
	}))

	out, err := r.Resolve(content.Item{
		ID: "55", Kind: content.KindMovie, Name: "Heat",
	}, content.Category{}, false)
	require.NoError(t, err)
	assert.Zero(t, out.Intent.ResumeFrom)
}

func TestResolveSeriesNavigates(t *testing.T) {
	r, _ := newResolver(t)
	out, err := r.Resolve(content.Item{
		ID: "77", Kind: content.KindSeries, Name: "The Wire",
	}, content.Category{}, false)
	require.NoError(t, err)

	assert.Equal(t, OutcomeOpenSeries, out.Kind)
	assert.Equal(t, "77", out.SeriesID)
}

func TestResolveProtectedCategoryAsksForPasscode(t *testing.T) {
	r, _ := newResolver(t)
	cat := content.Category{ID: "9", Name: "XXX Late Night", Protected: true}

	out, err := r.Resolve(content.Item{ID: "1", Kind: content.KindChannel}, cat, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomePasscode, out.Kind)

	out, err = r.Resolve(content.Item{ID: "1", Kind: content.KindChannel}, cat, true)
	require.NoError(t, err)
	assert.Equal(t, OutcomePlay, out.Kind)
}

func TestVerifyPasscode(t *testing.T) {
	assert.True(t, VerifyPasscode("0000"))
	assert.False(t, VerifyPasscode("1234"))
	assert.False(t, VerifyPasscode(""))
}

func seasonItems() []content.Item {
	mk := func(id string, num int) content.Item {
		return content.Item{
			ID: id, Kind: content.KindEpisode, SeriesID: "77",
			Season: 2, Episode: num, Extension: "mkv",
			Name:      "Episode " + id,
			StreamURL: "http://portal.example/series/u/p/" + id + ".mkv",
		}
	}
	return []content.Item{mk("201", 1), mk("202", 2), mk("203", 3)}
}

func TestEpisodeIntentCarriesNextEpisode(t *testing.T) {
	r, _ := newResolver(t)
	season := seasonItems()

	intent, err := r.EpisodeIntent(season[1], season)
	require.NoError(t, err)
	require.NotNil(t, intent.Series)
	assert.Equal(t, "77", intent.Series.SeriesID)
	assert.Equal(t, 2, intent.Series.Season)
	require.NotNil(t, intent.Series.Next)
	assert.Equal(t, "203", intent.Series.Next.EpisodeID)
	assert.Equal(t, 3, intent.Series.Next.EpisodeNumber)
}

func TestEpisodeIntentLastOfSeasonHasNoNext(t *testing.T) {
	r, _ := newResolver(t)
	season := seasonItems()

	intent, err := r.EpisodeIntent(season[2], season)
	require.NoError(t, err)
	require.NotNil(t, intent.Series)
	assert.Nil(t, intent.Series.Next)
}

func TestResumeIntentMovie(t *testing.T) {
	r, store := newResolver(t)
	require.NoError(t, store.Save("movie:55", 600*time.Second, 7200*time.Second, progress.Meta{
		Title: "Heat", Kind: content.KindMovie, Extension: "mkv",
	}))
	rec, err := store.Get("movie:55")
	require.NoError(t, err)

	intent, itemID, err := r.ResumeIntent(*rec)
	require.NoError(t, err)
	assert.Equal(t, "55", itemID)
	assert.Equal(t, "http://portal.example/movie/u/p/55.mkv", intent.URL)
	assert.Equal(t, 600*time.Second, intent.ResumeFrom)
}

func TestResumeIntentEpisodeRebuildsSeriesContext(t *testing.T) {
	r, store := newResolver(t)
	require.NoError(t, store.Save("series:77:2:202", 1200*time.Second, 2100*time.Second, progress.Meta{
		Title: "Collateral Damage", Kind: content.KindEpisode,
		SeriesID: "77", SeriesName: "The Wire", Season: 2,
		EpisodeID: "202", EpisodeNumber: 2,
		NextEpisodeID: "203", NextEpisodeNum: 3, Extension: "mkv",
	}))
	rec, err := store.Get("series:77:2:202")
	require.NoError(t, err)

	intent, itemID, err := r.ResumeIntent(*rec)
	require.NoError(t, err)
	assert.Equal(t, "202", itemID)
	assert.Equal(t, "http://portal.example/series/u/p/202.mkv", intent.URL)
	assert.Equal(t, 1200*time.Second, intent.ResumeFrom)
	require.NotNil(t, intent.Series)
	assert.Equal(t, "The Wire", intent.Series.SeriesName)
	require.NotNil(t, intent.Series.Next)
	assert.Equal(t, "203", intent.Series.Next.EpisodeID)
}

func TestDirectPlayIntentResumesUnfinishedEpisode(t *testing.T) {
	r, store := newResolver(t)
	require.NoError(t, store.Save("series:77:1:101", 600*time.Second, 2400*time.Second, progress.Meta{
		Title: "Arrival", Kind: content.KindEpisode,
		SeriesID: "77", SeriesName: "The Wire", Season: 1,
		EpisodeID: "101", EpisodeNumber: 1, Extension: "mkv",
	}))

	// No portal round trip: the unfinished record wins outright.
	intent, itemID, err := r.DirectPlayIntent(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, "101", itemID)
	assert.Equal(t, "http://portal.example/series/u/p/101.mkv", intent.URL)
	assert.Equal(t, 600*time.Second, intent.ResumeFrom)
}

func TestNextEpisodeIntent(t *testing.T) {
	r, _ := newResolver(t)
	prev := content.StreamIntent{
		Kind: content.KindEpisode,
		Series: &content.SeriesContext{
			SeriesID: "77", SeriesName: "The Wire", Season: 2,
			EpisodeID: "202", EpisodeNumber: 2,
			Next: &content.NextEpisode{
				EpisodeID: "203", EpisodeNumber: 3, Season: 2, Extension: "mkv",
			},
		},
	}

	next, itemID, ok := r.NextEpisodeIntent(prev)
	require.True(t, ok)
	assert.Equal(t, "203", itemID)
	assert.Equal(t, "http://portal.example/series/u/p/203.mkv", next.URL)
	assert.Zero(t, next.ResumeFrom)
	assert.Equal(t, "The Wire S02E03", next.Name)

	_, _, ok = r.NextEpisodeIntent(content.StreamIntent{Kind: content.KindMovie})
	assert.False(t, ok)
}
