// Package resolve turns a focused catalog entity into its consequence:
// a stream intent handed to the playback engine, or a navigation step.
// It is the only place selection semantics live; screens report what
// was focused, never what should happen.
package resolve

import (
	"context"
	"fmt"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/xtream"
)

// categoryPasscode gates adult categories. A fixed test passcode, not
// a security boundary; parental controls live on the portal side.
const categoryPasscode = "0000"

// OutcomeKind discriminates what a selection resolved to.
type OutcomeKind int

const (
	// OutcomePlay carries a ready StreamIntent.
	OutcomePlay OutcomeKind = iota
	// OutcomeOpenSeries navigates to the series details screen.
	OutcomeOpenSeries
	// OutcomePasscode means the category needs the passcode first.
	OutcomePasscode
)

// Outcome is the result of resolving a selection.
type Outcome struct {
	Kind     OutcomeKind
	Intent   content.StreamIntent
	ItemID   string
	SeriesID string
}

// Resolver builds intents from selections. The progress store is
// optional; without it every intent starts from zero.
type Resolver struct {
	client *xtream.Client
	store  *progress.Service
}

// New creates a resolver over the portal client.
func New(client *xtream.Client, store *progress.Service) *Resolver {
	return &Resolver{client: client, store: store}
}

// VerifyPasscode checks the category passcode.
func VerifyPasscode(code string) bool {
	return code == categoryPasscode
}

// Resolve maps a focused item to its outcome. The unlocked flag says
// whether the passcode was already entered for this category this
// session.
func (r *Resolver) Resolve(item content.Item, category content.Category, unlocked bool) (Outcome, error) {
	if category.Protected && !unlocked {
		return Outcome{Kind: OutcomePasscode}, nil
	}

	switch item.Kind {
	case content.KindChannel:
		return Outcome{
			Kind:   OutcomePlay,
			ItemID: item.ID,
			Intent: content.StreamIntent{
				URL:      item.StreamURL,
				Name:     item.Name,
				Kind:     content.KindChannel,
				Category: category.Name,
			},
		}, nil

	case content.KindMovie:
		intent := content.StreamIntent{
			URL:         item.StreamURL,
			Name:        item.Name,
			Kind:        content.KindMovie,
			Category:    category.Name,
			Description: item.Synopsis,
		}
		r.applyResume(&intent, content.MovieProgressKey(item.ID))
		return Outcome{Kind: OutcomePlay, ItemID: item.ID, Intent: intent}, nil

	case content.KindSeries:
		return Outcome{Kind: OutcomeOpenSeries, SeriesID: item.ID}, nil

	case content.KindEpisode:
		intent, err := r.EpisodeIntent(item, nil)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomePlay, ItemID: item.ID, Intent: intent}, nil

	default:
		return Outcome{}, fmt.Errorf("cannot resolve item kind %q", item.Kind)
	}
}

// EpisodeIntent builds a playable intent for an episode, carrying the
// series context and, when the season listing is available, the next
// episode. The season slice must be sorted by episode number.
func (r *Resolver) EpisodeIntent(ep content.Item, season []content.Item) (content.StreamIntent, error) {
	if ep.Kind != content.KindEpisode {
		return content.StreamIntent{}, fmt.Errorf("not an episode: kind %q", ep.Kind)
	}
	sc := &content.SeriesContext{
		SeriesID:      ep.SeriesID,
		Season:        ep.Season,
		EpisodeID:     ep.ID,
		EpisodeNumber: ep.Episode,
	}
	if next := nextInSeason(ep, season); next != nil {
		sc.Next = next
	}
	intent := content.StreamIntent{
		URL:         ep.StreamURL,
		Name:        ep.Name,
		Kind:        content.KindEpisode,
		Description: ep.Synopsis,
		Series:      sc,
	}
	r.applyResume(&intent, content.SeriesProgressKey(ep.SeriesID, ep.Season, ep.ID))
	return intent, nil
}

func nextInSeason(ep content.Item, season []content.Item) *content.NextEpisode {
	for i, cand := range season {
		if cand.ID != ep.ID {
			continue
		}
		if i+1 >= len(season) {
			return nil
		}
		n := season[i+1]
		return &content.NextEpisode{
			EpisodeID:     n.ID,
			EpisodeNumber: n.Episode,
			Season:        n.Season,
			Title:         n.Name,
			Extension:     n.Extension,
		}
	}
	return nil
}

// DirectPlayIntent implements the play shortcut on a series without
// opening details: resume the most recent unfinished episode when one
// exists, otherwise start the first episode of the first season.
func (r *Resolver) DirectPlayIntent(ctx context.Context, seriesID string) (content.StreamIntent, string, error) {
	if r.store != nil {
		if recs, err := r.store.BySeries(seriesID); err == nil {
			for _, rec := range recs {
				if !rec.Completed {
					return r.ResumeIntent(rec)
				}
			}
		}
	}

	info, err := r.client.SeriesDetail(ctx, seriesID)
	if err != nil {
		return content.StreamIntent{}, "", err
	}
	if len(info.Seasons) == 0 || len(info.Episodes[info.Seasons[0]]) == 0 {
		return content.StreamIntent{}, "", fmt.Errorf("series %s has no episodes", seriesID)
	}
	season := info.Episodes[info.Seasons[0]]
	intent, err := r.EpisodeIntent(season[0], season)
	if err != nil {
		return content.StreamIntent{}, "", err
	}
	return intent, season[0].ID, nil
}

// ResumeIntent rebuilds a playable intent from a continue-watching
// record, including resume position and series context.
func (r *Resolver) ResumeIntent(rec progress.Record) (content.StreamIntent, string, error) {
	switch rec.Kind {
	case content.KindMovie:
		id, ok := content.ParseMovieProgressKey(rec.Key)
		if !ok {
			return content.StreamIntent{}, "", fmt.Errorf("malformed progress key %q", rec.Key)
		}
		return content.StreamIntent{
			URL:        r.client.MovieStreamURL(id, rec.Extension),
			Name:       rec.Title,
			Kind:       content.KindMovie,
			ResumeFrom: rec.CurrentTime,
		}, id, nil

	case content.KindEpisode:
		sc := &content.SeriesContext{
			SeriesID:      rec.SeriesID,
			SeriesName:    rec.SeriesName,
			Season:        rec.Season,
			EpisodeID:     rec.EpisodeID,
			EpisodeNumber: rec.EpisodeNumber,
		}
		if rec.NextEpisodeID != "" {
			sc.Next = &content.NextEpisode{
				EpisodeID:     rec.NextEpisodeID,
				EpisodeNumber: rec.NextEpisodeNum,
				Season:        rec.Season,
				Extension:     rec.Extension,
			}
		}
		return content.StreamIntent{
			URL:        r.client.EpisodeStreamURL(rec.EpisodeID, rec.Extension),
			Name:       rec.Title,
			Kind:       content.KindEpisode,
			ResumeFrom: rec.CurrentTime,
			Series:     sc,
		}, rec.EpisodeID, nil

	default:
		return content.StreamIntent{}, "", fmt.Errorf("cannot resume kind %q", rec.Kind)
	}
}

// NextEpisodeIntent builds the intent for the episode following the
// one an intent just finished, starting from zero.
func (r *Resolver) NextEpisodeIntent(prev content.StreamIntent) (content.StreamIntent, string, bool) {
	if prev.Series == nil || prev.Series.Next == nil {
		return content.StreamIntent{}, "", false
	}
	next := prev.Series.Next
	sc := &content.SeriesContext{
		SeriesID:      prev.Series.SeriesID,
		SeriesName:    prev.Series.SeriesName,
		Season:        next.Season,
		EpisodeID:     next.EpisodeID,
		EpisodeNumber: next.EpisodeNumber,
	}
	name := next.Title
	if name == "" {
		name = fmt.Sprintf("%s S%02dE%02d", prev.Series.SeriesName, next.Season, next.EpisodeNumber)
	}
	return content.StreamIntent{
		URL:    r.client.EpisodeStreamURL(next.EpisodeID, next.Extension),
		Name:   name,
		Kind:   content.KindEpisode,
		Series: sc,
	}, next.EpisodeID, true
}

// applyResume attaches a stored resume position when one exists. A
// lookup failure just means starting from zero.
func (r *Resolver) applyResume(intent *content.StreamIntent, key string) {
	if r.store == nil {
		return
	}
	rec, err := r.store.Get(key)
	if err != nil || rec == nil || rec.Completed {
		return
	}
	intent.ResumeFrom = rec.CurrentTime
}
