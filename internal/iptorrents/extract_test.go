// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T, logger zerolog.Logger) *Extractor {
	t.Helper()
	return NewExtractor(testSettings(t, "https://iptorrents.com"), nil, logger)
}

func TestExtract_SingleRow(t *testing.T) {
	x := newTestExtractor(t, zerolog.Nop())
	page := resultsPage(testUID, headerRow(), dataRow(fixtureRow{id: 42, title: "Example.Release", size: "2.1 GB", seeds: "12", leeches: "3"}))

	records, err := x.Extract("example", []byte(page))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Example.Release", r.Title)
	assert.Equal(t, "https://iptorrents.com/details.php?id=42", r.URL)
	assert.Equal(t, "https://iptorrents.com/download.php/42/Example.Release.torrent?torrent_pass="+testRSSKey, r.DownloadURL)
	assert.Equal(t, 12, r.Seeds)
	assert.Equal(t, 3, r.Leeches)
	assert.Equal(t, Availability(12, 3), r.Availability)
	assert.Equal(t, int64(2254857830), r.Size)
}

func TestExtract_NoResultsRow(t *testing.T) {
	x := newTestExtractor(t, zerolog.Nop())
	page := resultsPage(testUID, headerRow(), noResultsRow())

	records, err := x.Extract("nothing", []byte(page))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtract_StopsAtNoResultsRow(t *testing.T) {
	x := newTestExtractor(t, zerolog.Nop())
	page := resultsPage(testUID,
		headerRow(),
		dataRow(fixtureRow{id: 1, title: "Before", size: "1 MB", seeds: "1", leeches: "0"}),
		noResultsRow(),
		dataRow(fixtureRow{id: 2, title: "After", size: "1 MB", seeds: "1", leeches: "0"}),
	)

	records, err := x.Extract("term", []byte(page))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Before", records[0].Title)
}

func TestExtract_MissingTable(t *testing.T) {
	x := newTestExtractor(t, zerolog.Nop())

	records, err := x.Extract("term", []byte(loggedInPageWithoutTable(testUID)))
	require.Error(t, err)
	assert.Nil(t, records)

	var malformed *MalformedPageError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "term", malformed.Term)
}

func TestExtract_SkipsBrokenRows(t *testing.T) {
	var buf bytes.Buffer
	x := newTestExtractor(t, zerolog.New(&buf).Level(zerolog.WarnLevel))

	noDownload := strings.Replace(
		dataRow(fixtureRow{id: 3, title: "NoDownload", size: "1 MB", seeds: "1", leeches: "1"}),
		"/download.php/3/NoDownload.torrent", "/bookmark.php?id=3", 1)

	page := resultsPage(testUID,
		headerRow(),
		dataRow(fixtureRow{id: 1, title: "Good.One", size: "700 MB", seeds: "5", leeches: "1"}),
		dataRow(fixtureRow{id: 2, title: "Bad.Seeds", size: "700 MB", seeds: "n/a", leeches: "1"}),
		noDownload,
		dataRow(fixtureRow{id: 4, title: "Negative", size: "700 MB", seeds: "-1", leeches: "1"}),
		dataRow(fixtureRow{id: 5, title: "No.Size", size: "huge", seeds: "5", leeches: "1"}),
		dataRow(fixtureRow{id: 6, title: "Good.Two", size: "1.5 GB", seeds: "9", leeches: "0"}),
	)

	records, err := x.Extract("term", []byte(page))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Good.One", records[0].Title)
	assert.Equal(t, int64(700*1024*1024), records[0].Size)
	assert.Equal(t, "Good.Two", records[1].Title)

	var reasons []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "term", entry["term"])
		reasons = append(reasons, entry["reason"].(string))
	}
	assert.Equal(t, []string{"invalid seeders", "missing download link", "invalid seeders", "missing size"}, reasons)
}

func TestExtract_FeedKeyOnEveryDownloadURL(t *testing.T) {
	x := newTestExtractor(t, zerolog.Nop())
	page := resultsPage(testUID,
		headerRow(),
		dataRow(fixtureRow{id: 1, title: "One", size: "1 KB", seeds: "1", leeches: "0"}),
		dataRow(fixtureRow{id: 2, title: "Two", size: "2 KB", seeds: "2", leeches: "0"}),
	)

	records, err := x.Extract("term", []byte(page))
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.True(t, strings.HasSuffix(r.DownloadURL, "?torrent_pass="+testRSSKey), r.DownloadURL)
	}
}

func TestClassifyRows(t *testing.T) {
	page := resultsPage(testUID,
		headerRow(),
		dataRow(fixtureRow{id: 1, title: "One", size: "1 KB", seeds: "1", leeches: "0"}),
		noResultsRow(),
	)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	rows := classifyRows(doc.Find("table#torrents"))
	require.Len(t, rows, 3)
	assert.Equal(t, []rowKind{rowHeader, rowData, rowNoResults}, []rowKind{rows[0].kind, rows[1].kind, rows[2].kind})
	assert.Equal(t, 2, rows[2].index)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://iptorrents.com/download.php/1/a.torrent?torrent_pass=REDACTED",
		redactURL("https://iptorrents.com/download.php/1/a.torrent?torrent_pass="+testRSSKey))
	assert.Equal(t, "https://iptorrents.com/details.php?id=1", redactURL("https://iptorrents.com/details.php?id=1"))
}
