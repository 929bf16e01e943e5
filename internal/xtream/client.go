package xtream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/teleview/teleview/internal/content"
)

// AccountStatus mirrors the portal's user_info.status values.
type AccountStatus string

const (
	AccountActive  AccountStatus = "Active"
	AccountPending AccountStatus = "Pending"
	AccountExpired AccountStatus = "Expired"
	AccountBanned  AccountStatus = "Banned"
)

// Account is the normalized result of an auth probe.
type Account struct {
	Username       string
	Status         AccountStatus
	ExpiresAt      time.Time
	MaxConnections int
}

// SeriesInfo is a normalized get_series_info response.
type SeriesInfo struct {
	Name     string
	Plot     string
	Cover    string
	Seasons  []int
	Episodes map[int][]content.Item
}

// Credentials identifies a portal account.
type Credentials struct {
	BaseURL  string
	Username string
	Password string
}

// Client talks to an Xtream-codes compatible portal.
type Client struct {
	http  *resty.Client
	creds Credentials
}

// NewClient builds a portal client with retry on transient failures.
func NewClient(creds Credentials) *Client {
	c := resty.New().
		SetBaseURL(creds.BaseURL).
		SetTimeout(20 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500 || r.StatusCode() == http.StatusTooManyRequests
		}).
		SetHeader("User-Agent", "teleview/1.0").
		OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
			slog.Debug("portal response",
				"action", r.Request.QueryParam.Get("action"),
				"status", r.StatusCode(),
				"elapsed", r.Time())
			return nil
		})
	return &Client{http: c, creds: creds}
}

// Creds returns the credentials the client was built with.
func (c *Client) Creds() Credentials { return c.creds }

func (c *Client) api(ctx context.Context, action string, params map[string]string, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("username", c.creds.Username).
		SetQueryParam("password", c.creds.Password)
	if action != "" {
		req.SetQueryParam("action", action)
	}
	for k, v := range params {
		req.SetQueryParam(k, v)
	}
	resp, err := req.Get("/player_api.php")
	if err != nil {
		return fmt.Errorf("portal request %q: %w", action, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("portal request %q: unexpected status %d", action, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("portal request %q: decode: %w", action, err)
	}
	return nil
}

// Authenticate probes the account and reports its status. A portal
// that answers auth=0 maps to Pending unless the status says otherwise.
func (c *Client) Authenticate(ctx context.Context) (*Account, error) {
	var raw rawAccount
	if err := c.api(ctx, "", nil, &raw); err != nil {
		return nil, err
	}
	acct := &Account{
		Username:       raw.UserInfo.Username,
		MaxConnections: int(raw.UserInfo.MaxCons),
	}
	switch raw.UserInfo.Status {
	case "Active":
		acct.Status = AccountActive
	case "Expired":
		acct.Status = AccountExpired
	case "Banned", "Disabled":
		acct.Status = AccountBanned
	default:
		acct.Status = AccountPending
	}
	if raw.UserInfo.Auth == 0 && acct.Status == AccountActive {
		acct.Status = AccountPending
	}
	if ts, err := strconv.ParseInt(string(raw.UserInfo.ExpDate), 10, 64); err == nil && ts > 0 {
		acct.ExpiresAt = time.Unix(ts, 0)
	}
	return acct, nil
}

// LiveCategories fetches the live-TV category list.
func (c *Client) LiveCategories(ctx context.Context) ([]content.Category, error) {
	return c.categories(ctx, "get_live_categories")
}

// VodCategories fetches the movie category list.
func (c *Client) VodCategories(ctx context.Context) ([]content.Category, error) {
	return c.categories(ctx, "get_vod_categories")
}

// SeriesCategories fetches the series category list.
func (c *Client) SeriesCategories(ctx context.Context) ([]content.Category, error) {
	return c.categories(ctx, "get_series_categories")
}

func (c *Client) categories(ctx context.Context, action string) ([]content.Category, error) {
	var raw []rawCategory
	if err := c.api(ctx, action, nil, &raw); err != nil {
		return nil, err
	}
	cats := make([]content.Category, 0, len(raw))
	for _, r := range raw {
		cats = append(cats, content.Category{
			ID:        string(r.CategoryID),
			Name:      r.CategoryName,
			Protected: categoryProtected(r.CategoryName),
		})
	}
	return cats, nil
}

// LiveStreams fetches the channels of one category.
func (c *Client) LiveStreams(ctx context.Context, categoryID string) ([]content.Item, error) {
	var raw []rawLiveStream
	params := map[string]string{}
	if categoryID != "" {
		params["category_id"] = categoryID
	}
	if err := c.api(ctx, "get_live_streams", params, &raw); err != nil {
		return nil, err
	}
	items := make([]content.Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, content.Item{
			ID:           string(r.StreamID),
			Kind:         content.KindChannel,
			Name:         r.Name,
			PosterURL:    r.StreamIcon,
			CategoryID:   string(r.CategoryID),
			Number:       int(r.Num),
			EPGChannelID: r.EPGChannelID,
			StreamURL:    c.LiveStreamURL(string(r.StreamID)),
		})
	}
	return items, nil
}

// VodStreams fetches the movies of one category.
func (c *Client) VodStreams(ctx context.Context, categoryID string) ([]content.Item, error) {
	var raw []rawVodStream
	params := map[string]string{}
	if categoryID != "" {
		params["category_id"] = categoryID
	}
	if err := c.api(ctx, "get_vod_streams", params, &raw); err != nil {
		return nil, err
	}
	items := make([]content.Item, 0, len(raw))
	for _, r := range raw {
		ext := r.ContainerExtension
		if ext == "" {
			ext = "mp4"
		}
		items = append(items, content.Item{
			ID:          string(r.StreamID),
			Kind:        content.KindMovie,
			Name:        r.Name,
			PosterURL:   r.StreamIcon,
			CategoryID:  string(r.CategoryID),
			Synopsis:    r.Plot,
			Rating:      float64(r.Rating),
			Year:        int(r.Year),
			Extension:   ext,
			StreamURL:   c.MovieStreamURL(string(r.StreamID), ext),
		})
	}
	return items, nil
}

// Series fetches the series of one category.
func (c *Client) Series(ctx context.Context, categoryID string) ([]content.Item, error) {
	var raw []rawSeries
	params := map[string]string{}
	if categoryID != "" {
		params["category_id"] = categoryID
	}
	if err := c.api(ctx, "get_series", params, &raw); err != nil {
		return nil, err
	}
	items := make([]content.Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, content.Item{
			ID:          string(r.SeriesID),
			Kind:        content.KindSeries,
			Name:        r.Name,
			PosterURL:   r.Cover,
			CategoryID:  string(r.CategoryID),
			Synopsis:    r.Plot,
			Rating:      float64(r.Rating),
		})
	}
	return items, nil
}

// SeriesDetail fetches and normalizes one series, seasons sorted
// ascending and episodes sorted by episode number within each season.
func (c *Client) SeriesDetail(ctx context.Context, seriesID string) (*SeriesInfo, error) {
	var raw rawSeriesInfo
	params := map[string]string{"series_id": seriesID}
	if err := c.api(ctx, "get_series_info", params, &raw); err != nil {
		return nil, err
	}
	info := &SeriesInfo{
		Name:     raw.Info.Name,
		Plot:     raw.Info.Plot,
		Cover:    raw.Info.Cover,
		Episodes: make(map[int][]content.Item, len(raw.Episodes)),
	}
	for key, eps := range raw.Episodes {
		season, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		items := make([]content.Item, 0, len(eps))
		for _, e := range eps {
			ext := e.ContainerExtension
			if ext == "" {
				ext = "mp4"
			}
			items = append(items, content.Item{
				ID:          string(e.ID),
				Kind:        content.KindEpisode,
				Name:        e.Title,
				PosterURL:   e.Info.MovieImage,
				Synopsis:    e.Info.Plot,
				SeriesID:    seriesID,
				Season:      season,
				Episode:     int(e.EpisodeNum),
				Duration:    time.Duration(e.Info.DurationSecs) * time.Second,
				Extension:   ext,
				StreamURL:   c.EpisodeStreamURL(string(e.ID), ext),
			})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Episode < items[j].Episode })
		info.Episodes[season] = items
		info.Seasons = append(info.Seasons, season)
	}
	sort.Ints(info.Seasons)
	return info, nil
}
