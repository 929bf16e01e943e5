package content

import (
	"fmt"
	"strings"
)

// MovieProgressKey builds the watch-progress key for a movie.
func MovieProgressKey(movieID string) string {
	return "movie:" + movieID
}

// SeriesProgressKey builds the watch-progress key for an episode.
func SeriesProgressKey(seriesID string, season int, episodeID string) string {
	return fmt.Sprintf("series:%s:%d:%s", seriesID, season, episodeID)
}

// ParseMovieProgressKey extracts the movie id from a movie progress
// key, reporting false for any other key shape.
func ParseMovieProgressKey(key string) (string, bool) {
	id, ok := strings.CutPrefix(key, "movie:")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// FavoriteKey builds the favorites-map key for an item ({kind}_{id}).
func FavoriteKey(kind Kind, id string) string {
	return string(kind) + "_" + id
}
