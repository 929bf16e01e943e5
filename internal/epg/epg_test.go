package epg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXMLTV = `<?xml version="1.0" encoding="UTF-8"?>
<tv>
  <programme channel="bbc1.uk" start="20260831180000 +0000" stop="20260831190000 +0000">
    <title>Evening News</title>
    <desc>Headlines and weather.</desc>
  </programme>
  <programme channel="bbc1.uk" start="20260831190000 +0000" stop="20260831203000 +0000">
    <title>Nature Documentary</title>
  </programme>
  <programme channel="bbc1.uk" start="20260831160000 +0000" stop="20260831180000 +0000">
    <title>Afternoon Quiz</title>
  </programme>
  <programme channel="ch2.uk" start="20260831170000" stop="20260831230000">
    <title>Film Marathon</title>
  </programme>
  <programme channel="ch2.uk" start="bogus" stop="20260831230000">
    <title>Broken Entry</title>
  </programme>
</tv>`

func mustGuide(t *testing.T) *Guide {
	t.Helper()
	g, err := Parse(strings.NewReader(sampleXMLTV))
	require.NoError(t, err)
	return g
}

func TestParseSortsAndSkipsBadEntries(t *testing.T) {
	g := mustGuide(t)
	assert.Equal(t, 2, g.Channels())

	at := time.Date(2026, 8, 31, 16, 30, 0, 0, time.UTC)
	nn := g.Lookup("bbc1.uk", at)
	require.NotNil(t, nn.Now)
	assert.Equal(t, "Afternoon Quiz", nn.Now.Title)
	require.NotNil(t, nn.Next)
	assert.Equal(t, "Evening News", nn.Next.Title)
}

func TestLookupMidProgramme(t *testing.T) {
	g := mustGuide(t)

	at := time.Date(2026, 8, 31, 18, 30, 0, 0, time.UTC)
	nn := g.Lookup("bbc1.uk", at)
	require.NotNil(t, nn.Now)
	assert.Equal(t, "Evening News", nn.Now.Title)
	assert.Equal(t, "Headlines and weather.", nn.Now.Description)
	require.NotNil(t, nn.Next)
	assert.Equal(t, "Nature Documentary", nn.Next.Title)
	assert.InDelta(t, 0.5, nn.ProgressFraction(at), 0.001)
}

func TestLookupGapBetweenProgrammes(t *testing.T) {
	g, err := Parse(strings.NewReader(`<tv>
	  <programme channel="x" start="20260831100000 +0000" stop="20260831110000 +0000"><title>A</title></programme>
	  <programme channel="x" start="20260831120000 +0000" stop="20260831130000 +0000"><title>B</title></programme>
	</tv>`))
	require.NoError(t, err)

	at := time.Date(2026, 8, 31, 11, 30, 0, 0, time.UTC)
	nn := g.Lookup("x", at)
	assert.Nil(t, nn.Now)
	require.NotNil(t, nn.Next)
	assert.Equal(t, "B", nn.Next.Title)
	assert.Zero(t, nn.ProgressFraction(at))
}

func TestLookupAfterLastProgramme(t *testing.T) {
	g := mustGuide(t)

	at := time.Date(2026, 8, 31, 21, 0, 0, 0, time.UTC)
	nn := g.Lookup("bbc1.uk", at)
	assert.Nil(t, nn.Now)
	assert.Nil(t, nn.Next)
}

func TestLookupZonelessTimestampsReadAsUTC(t *testing.T) {
	g := mustGuide(t)

	at := time.Date(2026, 8, 31, 20, 0, 0, 0, time.UTC)
	nn := g.Lookup("ch2.uk", at)
	require.NotNil(t, nn.Now)
	assert.Equal(t, "Film Marathon", nn.Now.Title)
	assert.Nil(t, nn.Next)
}

func TestLookupUnknownChannel(t *testing.T) {
	g := mustGuide(t)
	assert.Equal(t, NowNext{}, g.Lookup("nope", time.Now()))
}

func TestParseMalformedDocument(t *testing.T) {
	_, err := Parse(strings.NewReader("<tv><programme"))
	require.Error(t, err)
}
