package content

import "time"

// Kind discriminates the normalized content variants. Internal logic
// branches on Kind only, never on optional-field presence.
type Kind string

const (
	KindChannel Kind = "channel"
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
	KindEpisode Kind = "episode"
)

// Item is a single normalized catalog entry. All fields are populated
// at the API boundary (internal/xtream); screens treat Items as opaque
// values identified by Kind and ID.
type Item struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	Category   string `json:"category"`
	PosterURL  string `json:"poster_url"`
	Synopsis   string `json:"synopsis"`
	Rating     float64 `json:"rating"`
	Year       int    `json:"year"`
	StreamURL  string `json:"stream_url,omitempty"`

	// Channel-only
	EPGChannelID string `json:"epg_channel_id,omitempty"`
	Number       int    `json:"number,omitempty"`

	// Movie/episode-only
	Extension string        `json:"extension,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`

	// Episode-only
	SeriesID string `json:"series_id,omitempty"`
	Season   int    `json:"season,omitempty"`
	Episode  int    `json:"episode,omitempty"`
}

// Category is a catalog category. Password-protected categories are
// gated behind a passcode prompt before their contents resolve.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
}

// SeriesContext carries enough series state for the player to request
// the following episode without refetching season data.
type SeriesContext struct {
	SeriesID      string `json:"series_id"`
	SeriesName    string `json:"series_name"`
	Season        int    `json:"season"`
	EpisodeID     string `json:"episode_id"`
	EpisodeNumber int    `json:"episode_number"`
	Next          *NextEpisode `json:"next,omitempty"`
}

// NextEpisode identifies the episode that follows the one being played.
type NextEpisode struct {
	EpisodeID     string `json:"episode_id"`
	EpisodeNumber int    `json:"episode_number"`
	Season        int    `json:"season"`
	Title         string `json:"title"`
	Extension     string `json:"extension"`
}

// StreamIntent is the resolved, immutable instruction to play one URL.
// It is created by the resolver and consumed exactly once by the
// playback engine.
type StreamIntent struct {
	URL         string
	Name        string
	Kind        Kind
	Category    string
	Description string
	Series      *SeriesContext
	ResumeFrom  time.Duration
}

// IsLive reports whether the intent refers to a live channel.
func (s StreamIntent) IsLive() bool {
	return s.Kind == KindChannel
}

// ProgressKey returns the watch-progress key for an intent:
// movie:{id} or series:{id}:{season}:{episode}.
func (s StreamIntent) ProgressKey(itemID string) string {
	if s.Series != nil {
		return SeriesProgressKey(s.Series.SeriesID, s.Series.Season, s.Series.EpisodeID)
	}
	return MovieProgressKey(itemID)
}
