// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

type rowKind uint8

const (
	rowHeader rowKind = iota
	rowNoResults
	rowData
)

func (k rowKind) String() string {
	switch k {
	case rowHeader:
		return "header"
	case rowNoResults:
		return "no_results"
	default:
		return "data"
	}
}

// rowDescriptor is one classified row of the results table.
type rowDescriptor struct {
	index int
	kind  rowKind
	sel   *goquery.Selection
}

// classifyRows walks the table once and tags every row in document order.
func classifyRows(table *goquery.Selection) []rowDescriptor {
	rows := table.Find("tr")
	out := make([]rowDescriptor, 0, rows.Length())
	rows.Each(func(i int, row *goquery.Selection) {
		kind := rowData
		switch {
		case row.Find("th").First().HasClass("ac"):
			kind = rowHeader
		case row.Find(`td[colspan="99"]`).Length() > 0:
			kind = rowNoResults
		}
		out = append(out, rowDescriptor{index: i, kind: kind, sel: row})
	})
	return out
}

// Extractor turns a results page into records.
type Extractor struct {
	siteURL string
	rssKey  string
	metrics Metrics
	log     zerolog.Logger
}

func NewExtractor(s Settings, metrics Metrics, logger zerolog.Logger) *Extractor {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Extractor{siteURL: s.SiteURL, rssKey: s.RSSKey, metrics: metrics, log: logger}
}

// Extract parses the page served for term. A page without the results table
// yields *MalformedPageError. Rows that cannot be converted are logged and
// skipped.
func (x *Extractor) Extract(term string, body []byte) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	table := doc.Find("table#torrents").First()
	if table.Length() == 0 {
		return nil, &MalformedPageError{Term: term}
	}

	var (
		records []Record
		skipped int
	)

	for _, row := range classifyRows(table) {
		if row.kind == rowHeader {
			continue
		}
		if row.kind == rowNoResults {
			x.log.Debug().Str("term", term).Msg("no results found for search")
			break
		}

		record, err := x.parseRow(row)
		if err != nil {
			skipped++
			ev := x.log.Warn().Str("term", term).Int("row", row.index)
			var rowErr *RowParseError
			if errors.As(err, &rowErr) {
				ev = ev.Str("reason", rowErr.Reason)
			}
			ev.Err(err).Msg("skipping result row")
			continue
		}
		x.log.Trace().Str("term", term).Str("title", record.Title).Str("download", redactURL(record.DownloadURL)).Msg("found release")
		records = append(records, record)
	}

	x.metrics.ObserveRows(len(records), skipped)
	return records, nil
}

func (x *Extractor) parseRow(row rowDescriptor) (Record, error) {
	fail := func(reason string, err error) (Record, error) {
		return Record{}, &RowParseError{Row: row.index, Reason: reason, Err: err}
	}

	download := anchorContaining(row.sel, "download")
	if download.Length() == 0 {
		return fail("missing download link", nil)
	}

	details := anchorContaining(row.sel, "details")
	if details.Length() == 0 {
		return fail("missing details link", nil)
	}
	title := strings.TrimSpace(details.Text())
	if title == "" {
		return fail("empty title", nil)
	}

	seeds, err := parseCount(row.sel.Find("td.t_seeders").First())
	if err != nil {
		return fail("invalid seeders", err)
	}
	leeches, err := parseCount(row.sel.Find("td.t_leechers").First())
	if err != nil {
		return fail("invalid leechers", err)
	}

	sizeText, ok := firstTextMatching(row.sel, matchSize)
	if !ok {
		return fail("missing size", nil)
	}
	size, err := ParseSize(sizeText)
	if err != nil {
		return fail("invalid size", err)
	}

	return Record{
		Title:        title,
		URL:          x.absolute(details.AttrOr("href", "")),
		DownloadURL:  x.absolute(download.AttrOr("href", "")) + "?torrent_pass=" + x.rssKey,
		Seeds:        seeds,
		Leeches:      leeches,
		Availability: Availability(seeds, leeches),
		Size:         size,
	}, nil
}

func (x *Extractor) absolute(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return x.siteURL + href
}

// anchorContaining returns the first anchor whose href contains needle.
func anchorContaining(row *goquery.Selection, needle string) *goquery.Selection {
	return row.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
		return strings.Contains(a.AttrOr("href", ""), needle)
	}).First()
}

func parseCount(cell *goquery.Selection) (int, error) {
	if cell.Length() == 0 {
		return 0, fmt.Errorf("cell not found")
	}
	text := strings.TrimSpace(cell.Text())
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", text)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}

// firstTextMatching returns the first text node below sel, in document
// order, for which match returns true.
func firstTextMatching(sel *goquery.Selection, match func(string) bool) (string, bool) {
	var walk func(n *html.Node) (string, bool)
	walk = func(n *html.Node) (string, bool) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if match(text) {
				return text, true
			}
			return "", false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if text, ok := walk(c); ok {
				return text, true
			}
		}
		return "", false
	}

	for _, n := range sel.Nodes {
		if text, ok := walk(n); ok {
			return text, true
		}
	}
	return "", false
}

// redactURL hides the feed key of a download url for logging.
func redactURL(u string) string {
	idx := strings.Index(u, "torrent_pass=")
	if idx < 0 {
		return u
	}
	return u[:idx] + "torrent_pass=REDACTED"
}
