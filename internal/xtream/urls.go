package xtream

import (
	"fmt"
	"strings"
)

// Stream URLs follow the fixed Xtream path layout:
//
//	{base}/live/{user}/{pass}/{id}.ts
//	{base}/movie/{user}/{pass}/{id}.{ext}
//	{base}/series/{user}/{pass}/{id}.{ext}

func (c *Client) streamURL(segment, id, ext string) string {
	base := strings.TrimSuffix(c.creds.BaseURL, "/")
	return fmt.Sprintf("%s/%s/%s/%s/%s.%s", base, segment, c.creds.Username, c.creds.Password, id, ext)
}

// LiveStreamURL builds the MPEG-TS URL for a live channel.
func (c *Client) LiveStreamURL(streamID string) string {
	return c.streamURL("live", streamID, "ts")
}

// MovieStreamURL builds the VOD URL for a movie.
func (c *Client) MovieStreamURL(streamID, ext string) string {
	if ext == "" {
		ext = "mp4"
	}
	return c.streamURL("movie", streamID, ext)
}

// EpisodeStreamURL builds the VOD URL for a series episode.
func (c *Client) EpisodeStreamURL(episodeID, ext string) string {
	if ext == "" {
		ext = "mp4"
	}
	return c.streamURL("series", episodeID, ext)
}

// XMLTVURL builds the portal's full EPG export URL.
func (c *Client) XMLTVURL() string {
	base := strings.TrimSuffix(c.creds.BaseURL, "/")
	return fmt.Sprintf("%s/xmltv.php?username=%s&password=%s", base, c.creds.Username, c.creds.Password)
}
