// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import "strings"

// Record is one release extracted from a search results page. Records are
// values: two records with equal fields are the same release.
type Record struct {
	Title        string  `json:"title" yaml:"title"`
	URL          string  `json:"url" yaml:"url"`
	DownloadURL  string  `json:"download_url" yaml:"download_url"`
	Seeds        int     `json:"seeds" yaml:"seeds"`
	Leeches      int     `json:"leeches" yaml:"leeches"`
	Availability float64 `json:"availability" yaml:"availability"`
	Size         int64   `json:"size" yaml:"size"`
}

// Entry is the unit handed over by the caller: a title, an optional url and
// optional explicit search strings.
type Entry struct {
	Title         string   `json:"title"`
	URL           string   `json:"url,omitempty"`
	SearchStrings []string `json:"search_strings,omitempty"`
}

// Terms returns the search strings of the entry, falling back to its title.
// Blank strings are dropped.
func (e Entry) Terms() []string {
	terms := make([]string, 0, len(e.SearchStrings))
	for _, s := range e.SearchStrings {
		if strings.TrimSpace(s) == "" {
			continue
		}
		terms = append(terms, s)
	}
	if len(terms) == 0 && strings.TrimSpace(e.Title) != "" {
		terms = append(terms, e.Title)
	}
	return terms
}
