package epg

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Programme is one scheduled entry for a channel.
type Programme struct {
	ChannelID   string
	Title       string
	Description string
	Start       time.Time
	Stop        time.Time
}

// NowNext pairs the currently airing programme with the one after it.
// Either pointer may be nil when the guide has a gap.
type NowNext struct {
	Now  *Programme
	Next *Programme
}

// Guide holds parsed programmes indexed by XMLTV channel id, each
// channel's schedule sorted by start time.
type Guide struct {
	programmes map[string][]Programme
	fetchedAt  time.Time
}

type xmltvDoc struct {
	XMLName    xml.Name         `xml:"tv"`
	Programmes []xmltvProgramme `xml:"programme"`
}

type xmltvProgramme struct {
	Channel string `xml:"channel,attr"`
	Start   string `xml:"start,attr"`
	Stop    string `xml:"stop,attr"`
	Title   string `xml:"title"`
	Desc    string `xml:"desc"`
}

// xmltvTime is the XMLTV timestamp layout, e.g. "20260831190000 +0000".
// Some exports omit the zone offset; those are read as UTC.
const (
	xmltvTime       = "20060102150405 -0700"
	xmltvTimeNoZone = "20060102150405"
)

func parseXMLTVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(xmltvTime, s); err == nil {
		return t, nil
	}
	return time.Parse(xmltvTimeNoZone, s)
}

// Parse reads an XMLTV document into a Guide. Programmes with
// unparseable timestamps are skipped rather than failing the whole
// guide; a malformed document fails outright.
func Parse(r io.Reader) (*Guide, error) {
	var doc xmltvDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse xmltv: %w", err)
	}
	g := &Guide{
		programmes: make(map[string][]Programme),
		fetchedAt:  time.Now(),
	}
	for _, p := range doc.Programmes {
		start, err := parseXMLTVTime(p.Start)
		if err != nil {
			continue
		}
		stop, err := parseXMLTVTime(p.Stop)
		if err != nil {
			continue
		}
		g.programmes[p.Channel] = append(g.programmes[p.Channel], Programme{
			ChannelID:   p.Channel,
			Title:       strings.TrimSpace(p.Title),
			Description: strings.TrimSpace(p.Desc),
			Start:       start,
			Stop:        stop,
		})
	}
	for id := range g.programmes {
		sort.Slice(g.programmes[id], func(i, j int) bool {
			return g.programmes[id][i].Start.Before(g.programmes[id][j].Start)
		})
	}
	return g, nil
}

// Channels returns the number of channels the guide covers.
func (g *Guide) Channels() int { return len(g.programmes) }

// FetchedAt reports when the guide was parsed.
func (g *Guide) FetchedAt() time.Time { return g.fetchedAt }

// Lookup returns the now/next pair for a channel at the given instant.
// The zero NowNext is returned for unknown channels.
func (g *Guide) Lookup(channelID string, at time.Time) NowNext {
	progs, ok := g.programmes[channelID]
	if !ok {
		return NowNext{}
	}
	// First programme starting after `at`; the one before it is a
	// candidate for "now" if `at` falls inside its slot.
	i := sort.Search(len(progs), func(i int) bool {
		return progs[i].Start.After(at)
	})
	var nn NowNext
	if i > 0 && !at.Before(progs[i-1].Start) && at.Before(progs[i-1].Stop) {
		nn.Now = &progs[i-1]
	}
	if i < len(progs) {
		nn.Next = &progs[i]
	}
	return nn
}

// ProgressFraction reports how far through the current programme the
// instant is, clamped to [0, 1]. Zero when nothing is airing.
func (nn NowNext) ProgressFraction(at time.Time) float64 {
	if nn.Now == nil {
		return 0
	}
	total := nn.Now.Stop.Sub(nn.Now.Start)
	if total <= 0 {
		return 0
	}
	f := float64(at.Sub(nn.Now.Start)) / float64(total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
