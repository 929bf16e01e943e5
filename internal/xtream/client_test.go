package xtream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleview/teleview/internal/content"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Credentials{
		BaseURL:  srv.URL,
		Username: "alice",
		Password: "s3cret",
	})
}

func apiHandler(t *testing.T, wantAction string, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/player_api.php", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		assert.Equal(t, "s3cret", r.URL.Query().Get("password"))
		assert.Equal(t, wantAction, r.URL.Query().Get("action"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestFlexDecoding(t *testing.T) {
	var row struct {
		A FlexInt    `json:"a"`
		B FlexInt    `json:"b"`
		C FlexString `json:"c"`
		D FlexString `json:"d"`
		E FlexFloat  `json:"e"`
		F FlexFloat  `json:"f"`
	}
	payload := `{"a": 42, "b": "42", "c": "seven", "d": 7, "e": "8.5", "f": 8.5}`
	require.NoError(t, json.Unmarshal([]byte(payload), &row))
	assert.Equal(t, FlexInt(42), row.A)
	assert.Equal(t, FlexInt(42), row.B)
	assert.Equal(t, FlexString("seven"), row.C)
	assert.Equal(t, FlexString("7"), row.D)
	assert.Equal(t, FlexFloat(8.5), row.E)
	assert.Equal(t, FlexFloat(8.5), row.F)
}

func TestLiveCategoriesNormalization(t *testing.T) {
	body := `[
		{"category_id": "4", "category_name": "News", "parent_id": 0},
		{"category_id": 9, "category_name": "xxx Late Night", "parent_id": "0"}
	]`
	c := newTestClient(t, apiHandler(t, "get_live_categories", body))

	cats, err := c.LiveCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, content.Category{ID: "4", Name: "News"}, cats[0])
	assert.Equal(t, "9", cats[1].ID)
	assert.True(t, cats[1].Protected)
}

func TestLiveStreamsBuildURLs(t *testing.T) {
	body := `[{"num": "12", "name": "BBC One", "stream_id": 101, "epg_channel_id": "bbc1.uk", "category_id": "4"}]`
	c := newTestClient(t, apiHandler(t, "get_live_streams", body))

	items, err := c.LiveStreams(context.Background(), "4")
	require.NoError(t, err)
	require.Len(t, items, 1)
	ch := items[0]
	assert.Equal(t, content.KindChannel, ch.Kind)
	assert.Equal(t, "101", ch.ID)
	assert.Equal(t, 12, ch.Number)
	assert.Equal(t, "bbc1.uk", ch.EPGChannelID)
	assert.Equal(t, c.creds.BaseURL+"/live/alice/s3cret/101.ts", ch.StreamURL)
}

func TestVodStreamsDefaultExtension(t *testing.T) {
	body := `[
		{"stream_id": "55", "name": "Heat", "container_extension": "mkv", "rating": "7.9", "year": "1995"},
		{"stream_id": "56", "name": "Ran"}
	]`
	c := newTestClient(t, apiHandler(t, "get_vod_streams", body))

	items, err := c.VodStreams(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "mkv", items[0].Extension)
	assert.Equal(t, 7.9, items[0].Rating)
	assert.Equal(t, 1995, items[0].Year)
	assert.Equal(t, c.creds.BaseURL+"/movie/alice/s3cret/55.mkv", items[0].StreamURL)
	assert.Equal(t, "mp4", items[1].Extension)
	assert.Equal(t, c.creds.BaseURL+"/movie/alice/s3cret/56.mp4", items[1].StreamURL)
}

func TestSeriesDetailSortsSeasonsAndEpisodes(t *testing.T) {
	body := `{
		"info": {"name": "The Wire", "plot": "Baltimore.", "cover": "http://img/wire.jpg"},
		"episodes": {
			"2": [
				{"id": "202", "episode_num": 2, "title": "Collateral Damage", "container_extension": "mkv"},
				{"id": "201", "episode_num": 1, "title": "Ebb Tide", "info": {"duration_secs": "3540"}}
			],
			"1": [
				{"id": "101", "episode_num": "1", "title": "The Target"}
			]
		}
	}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "get_series_info", r.URL.Query().Get("action"))
		assert.Equal(t, "77", r.URL.Query().Get("series_id"))
		_, _ = w.Write([]byte(body))
	})

	info, err := c.SeriesDetail(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, "The Wire", info.Name)
	assert.Equal(t, []int{1, 2}, info.Seasons)

	s2 := info.Episodes[2]
	require.Len(t, s2, 2)
	assert.Equal(t, "Ebb Tide", s2[0].Name)
	assert.Equal(t, 59*time.Minute, s2[0].Duration)
	assert.Equal(t, "Collateral Damage", s2[1].Name)

	ep := info.Episodes[1][0]
	assert.Equal(t, content.KindEpisode, ep.Kind)
	assert.Equal(t, "77", ep.SeriesID)
	assert.Equal(t, 1, ep.Season)
	assert.Equal(t, c.creds.BaseURL+"/series/alice/s3cret/101.mp4", ep.StreamURL)
}

func TestAuthenticateStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		want AccountStatus
	}{
		{
			name: "active",
			body: `{"user_info": {"username": "alice", "status": "Active", "auth": 1, "exp_date": "1893456000", "max_connections": "2"}}`,
			want: AccountActive,
		},
		{
			name: "pending approval",
			body: `{"user_info": {"username": "alice", "status": "Active", "auth": 0}}`,
			want: AccountPending,
		},
		{
			name: "expired",
			body: `{"user_info": {"username": "alice", "status": "Expired", "auth": 1}}`,
			want: AccountExpired,
		},
		{
			name: "banned",
			body: `{"user_info": {"username": "alice", "status": "Banned"}}`,
			want: AccountBanned,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, apiHandler(t, "", tt.body))
			acct, err := c.Authenticate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, acct.Status)
			if tt.name == "active" {
				assert.Equal(t, 2, acct.MaxConnections)
				assert.Equal(t, time.Unix(1893456000, 0), acct.ExpiresAt)
			}
		})
	}
}

func TestAPIErrorOnBadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.LiveCategories(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
}
