// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	searchPrefix   = "/t?"
	downloadPrefix = "/download.php/"
)

// EncodeQuery NFC-normalizes a search term and percent-encodes it in
// query-string form, with spaces rendered as '+'.
func EncodeQuery(term string) string {
	return url.QueryEscape(norm.NFC.String(term))
}

// categoryFilter renders one "<code>=" fragment per category, joined by '&'.
func categoryFilter(codes []Category) string {
	var b strings.Builder
	for i, code := range codes {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(code.String())
		b.WriteByte('=')
	}
	return b.String()
}

// BuildSearchPath returns the site-relative request path for a single term:
// /t?<cat1>=&<cat2>=&...&q=<query>&qf=
func BuildSearchPath(term string, codes []Category) string {
	if len(codes) == 0 {
		codes = []Category{CategoryAll}
	}
	return searchPrefix + categoryFilter(codes) + "&q=" + EncodeQuery(term) + "&qf="
}

// BuildSearchPaths returns one request path per term, in order.
func BuildSearchPaths(terms []string, codes []Category) []string {
	paths := make([]string, 0, len(terms))
	for _, term := range terms {
		paths = append(paths, BuildSearchPath(term, codes))
	}
	return paths
}
