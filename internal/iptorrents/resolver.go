// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"context"
	"net"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/net/publicsuffix"
)

// registrableDomain returns the eTLD+1 of host, or the host itself when it
// has none (IP addresses, localhost).
func registrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// onSite reports whether u points at the configured site.
func (a *Adapter) onSite(u *url.URL) bool {
	site, err := url.Parse(a.settings.SiteURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if registrableDomain(u.Hostname()) != registrableDomain(site.Hostname()) {
		return false
	}
	return site.Port() == "" || u.Port() == site.Port()
}

// Recognizes reports whether rawURL belongs to the site and is not already a
// direct download link.
func (a *Adapter) Recognizes(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !a.onSite(u) {
		return false
	}
	if !strings.HasPrefix(u.Path, "/") {
		return false
	}
	return !strings.HasPrefix(u.Path, downloadPrefix)
}

// IsSearchURL reports whether rawURL is a search results url of the site.
func (a *Adapter) IsSearchURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !a.onSite(u) {
		return false
	}
	return u.Path == strings.TrimSuffix(searchPrefix, "?")
}

// searchFromURL extracts the query and category codes embedded in a search
// url. Missing parts are left empty.
func searchFromURL(u *url.URL) (string, []Category) {
	values := u.Query()
	query := strings.TrimSpace(values.Get("q"))

	var codes []Category
	for key := range values {
		if key == "" {
			codes = append(codes, CategoryAll)
			continue
		}
		if n, err := strconv.Atoi(key); err == nil && n >= 0 {
			codes = append(codes, Category(n))
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return query, codes
}

// Resolve rewrites the url of a search-style entry into the download url of
// a matching release. Entries with any other url are returned unchanged. The
// download itself is never requested.
func (a *Adapter) Resolve(ctx context.Context, entry Entry) (Entry, error) {
	if !a.IsSearchURL(entry.URL) {
		a.log.Debug().Str("url", entry.URL).Msg("not a search url, leaving entry untouched")
		return entry, nil
	}

	u, _ := url.Parse(strings.TrimSpace(entry.URL))
	query, codes := searchFromURL(u)
	if query == "" {
		query = entry.Title
	}
	if len(codes) == 0 {
		codes = a.settings.Categories
	}

	records, err := a.SearchIn(ctx, Entry{Title: query}, codes)
	if err != nil {
		return entry, err
	}
	if len(records) == 0 {
		return entry, &NoResultsError{Query: query}
	}

	best := a.pick(query, records)
	a.log.Debug().Str("query", query).Str("title", best.Title).Str("url", redactURL(best.DownloadURL)).Msg("resolved search url")

	resolved := entry
	resolved.URL = best.DownloadURL
	return resolved, nil
}

// pick selects one record according to the resolve policy. Records are
// first put in display order so "first" is deterministic.
func (a *Adapter) pick(query string, records []Record) Record {
	sorted := append([]Record(nil), records...)
	SortForDisplay(sorted)

	if a.settings.ResolvePolicy != ResolveClosest {
		return sorted[0]
	}
	return closest(query, sorted)
}

var titleSeparators = regexp.MustCompile(`[\s._\-\[\]()]+`)

func normalizeTitle(s string) string {
	return strings.TrimSpace(titleSeparators.ReplaceAllString(strings.ToLower(s), " "))
}

// closest returns the record whose title best matches query. Titles that
// contain the query as a fuzzy subsequence win over those that don't; ties
// keep the incoming order.
func closest(query string, records []Record) Record {
	q := normalizeTitle(query)

	type candidate struct {
		record   Record
		matched  bool
		distance int
	}
	candidates := make([]candidate, 0, len(records))
	for _, r := range records {
		title := normalizeTitle(r.Title)
		c := candidate{record: r, distance: fuzzy.LevenshteinDistance(q, title)}
		if fuzzy.MatchNormalizedFold(q, title) {
			c.matched = true
			c.distance = fuzzy.RankMatchNormalizedFold(q, title)
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].matched != candidates[j].matched {
			return candidates[i].matched
		}
		return candidates[i].distance < candidates[j].distance
	})
	return candidates[0].record
}
