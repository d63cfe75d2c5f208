// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ResultSet holds the unique records of one search invocation. It is safe
// for concurrent use.
type ResultSet struct {
	mu      sync.Mutex
	records map[uint64][]Record
	size    int
}

func NewResultSet() *ResultSet {
	return &ResultSet{records: make(map[uint64][]Record)}
}

// recordKey hashes every field of the record.
func recordKey(r Record) uint64 {
	d := xxhash.New()
	writeField := func(s string) {
		_, _ = d.WriteString(strconv.Itoa(len(s)))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(s)
	}
	writeField(r.Title)
	writeField(r.URL)
	writeField(r.DownloadURL)
	writeField(strconv.Itoa(r.Seeds))
	writeField(strconv.Itoa(r.Leeches))
	writeField(strconv.FormatUint(math.Float64bits(r.Availability), 16))
	writeField(strconv.FormatInt(r.Size, 10))
	return d.Sum64()
}

// Add inserts r unless an equal record is already present. It reports
// whether the record was new.
func (s *ResultSet) Add(r Record) bool {
	key := recordKey(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.records[key] {
		if existing == r {
			return false
		}
	}
	s.records[key] = append(s.records[key], r)
	s.size++
	return true
}

// AddAll inserts every record and returns how many were new.
func (s *ResultSet) AddAll(records []Record) int {
	added := 0
	for _, r := range records {
		if s.Add(r) {
			added++
		}
	}
	return added
}

func (s *ResultSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Records returns a snapshot of the set. The order is unspecified.
func (s *ResultSet) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, s.size)
	for _, bucket := range s.records {
		out = append(out, bucket...)
	}
	return out
}

// SortForDisplay orders records by availability, then seeds, then title.
func SortForDisplay(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Availability != b.Availability || a.Seeds != b.Seeds {
			return Better(a, b)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.DownloadURL < b.DownloadURL
	})
}
