package xtream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The portal returns loosely shaped JSON: ids arrive as numbers or
// strings depending on panel version, flags as "0"/"1" strings or
// bools. FlexInt/FlexString absorb that at the boundary so nothing
// past this package branches on field presence.

// FlexInt decodes a JSON number or numeric string.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		// Some panels send floats for ids; truncate.
		fl, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			*f = 0
			return nil
		}
		n = int(fl)
	}
	*f = FlexInt(n)
	return nil
}

// FlexFloat decodes a JSON number or numeric string.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	fl, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(fl)
	return nil
}

// FlexString decodes a JSON string or number into a string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = FlexString(data)
	return nil
}

// FlexBool decodes "0"/"1", 0/1 or true/false.
func (f FlexInt) Bool() bool { return f != 0 }

// rawCategory is a category row from get_*_categories.
type rawCategory struct {
	CategoryID   FlexString `json:"category_id"`
	CategoryName string     `json:"category_name"`
	ParentID     FlexInt    `json:"parent_id"`
}

// rawLiveStream is a channel row from get_live_streams.
type rawLiveStream struct {
	Num          FlexInt    `json:"num"`
	Name         string     `json:"name"`
	StreamID     FlexString `json:"stream_id"`
	StreamIcon   string     `json:"stream_icon"`
	EPGChannelID string     `json:"epg_channel_id"`
	CategoryID   FlexString `json:"category_id"`
}

// rawVodStream is a movie row from get_vod_streams.
type rawVodStream struct {
	Num                FlexInt    `json:"num"`
	Name               string     `json:"name"`
	StreamID           FlexString `json:"stream_id"`
	StreamIcon         string     `json:"stream_icon"`
	CategoryID         FlexString `json:"category_id"`
	ContainerExtension string     `json:"container_extension"`
	Rating             FlexFloat  `json:"rating"`
	Plot               string     `json:"plot"`
	Year               FlexInt    `json:"year"`
}

// rawSeries is a series row from get_series.
type rawSeries struct {
	Num        FlexInt    `json:"num"`
	Name       string     `json:"name"`
	SeriesID   FlexString `json:"series_id"`
	Cover      string     `json:"cover"`
	CategoryID FlexString `json:"category_id"`
	Plot       string     `json:"plot"`
	Rating     FlexFloat  `json:"rating"`
	ReleaseDate string    `json:"releaseDate"`
}

// rawEpisode is an episode row inside get_series_info.
type rawEpisode struct {
	ID                 FlexString `json:"id"`
	EpisodeNum         FlexInt    `json:"episode_num"`
	Title              string     `json:"title"`
	ContainerExtension string     `json:"container_extension"`
	Season             FlexInt    `json:"season"`
	Info               struct {
		Plot         string    `json:"plot"`
		DurationSecs FlexInt   `json:"duration_secs"`
		MovieImage   string    `json:"movie_image"`
		Rating       FlexFloat `json:"rating"`
	} `json:"info"`
}

// rawSeriesInfo is the get_series_info envelope. Episodes arrive keyed
// by season number as strings.
type rawSeriesInfo struct {
	Seasons []struct {
		SeasonNumber FlexInt `json:"season_number"`
		Name         string  `json:"name"`
		EpisodeCount FlexInt `json:"episode_count"`
	} `json:"seasons"`
	Info struct {
		Name   string    `json:"name"`
		Plot   string    `json:"plot"`
		Cover  string    `json:"cover"`
		Rating FlexFloat `json:"rating"`
	} `json:"info"`
	Episodes map[string][]rawEpisode `json:"episodes"`
}

// rawAccount is the player_api auth envelope.
type rawAccount struct {
	UserInfo struct {
		Username  string     `json:"username"`
		Password  string     `json:"password"`
		Status    string     `json:"status"` // Active, Pending, Banned, Expired
		Auth      FlexInt    `json:"auth"`
		ExpDate   FlexString `json:"exp_date"`
		MaxCons   FlexInt    `json:"max_connections"`
	} `json:"user_info"`
	ServerInfo struct {
		URL        string     `json:"url"`
		Port       FlexString `json:"port"`
		Protocol   string     `json:"server_protocol"`
	} `json:"server_info"`
}

// protectedMarker flags categories gated behind the shared passcode.
// The panel convention is a name prefix; this mirrors the original
// panel behavior and is test-mode only, not a security boundary.
const protectedMarker = "XXX"

func categoryProtected(name string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(name)), protectedMarker)
}
