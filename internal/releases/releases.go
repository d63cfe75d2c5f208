// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package releases parses scene release names and memoizes the results.
package releases

import (
	"strings"
	"sync"

	"github.com/moistari/rls"
)

const defaultCapacity = 1024

// Parser wraps rls with a bounded first-in first-out memo. It is safe for
// concurrent use.
type Parser struct {
	mu       sync.Mutex
	capacity int
	cache    map[string]*rls.Release
	order    []string
	next     int
}

func NewParser(capacity int) *Parser {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Parser{
		capacity: capacity,
		cache:    make(map[string]*rls.Release, capacity),
		order:    make([]string, 0, capacity),
	}
}

func NewDefaultParser() *Parser {
	return NewParser(defaultCapacity)
}

// Parse returns the parsed release for name. The returned value is shared
// between callers and must not be modified.
func (p *Parser) Parse(name string) *rls.Release {
	p.mu.Lock()
	if cached, ok := p.cache[name]; ok {
		p.mu.Unlock()
		return cached
	}
	p.mu.Unlock()

	release := rls.ParseString(name)

	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.cache[name]; ok {
		return cached
	}
	if len(p.order) < p.capacity {
		p.order = append(p.order, name)
	} else {
		delete(p.cache, p.order[p.next])
		p.order[p.next] = name
		p.next = (p.next + 1) % p.capacity
	}
	p.cache[name] = &release
	return &release
}

// Len returns the number of memoized names.
func (p *Parser) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}

// Info is the subset of a parsed release shown next to search results.
type Info struct {
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	Year       int      `json:"year,omitempty" yaml:"year,omitempty"`
	Series     int      `json:"series,omitempty" yaml:"series,omitempty"`
	Episode    int      `json:"episode,omitempty" yaml:"episode,omitempty"`
	Resolution string   `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Source     string   `json:"source,omitempty" yaml:"source,omitempty"`
	Codec      []string `json:"codec,omitempty" yaml:"codec,omitempty"`
	HDR        []string `json:"hdr,omitempty" yaml:"hdr,omitempty"`
	Group      string   `json:"group,omitempty" yaml:"group,omitempty"`
}

// Describe parses name and returns the display fields.
func (p *Parser) Describe(name string) Info {
	r := p.Parse(name)

	info := Info{
		Title:      r.Title,
		Year:       r.Year,
		Series:     r.Series,
		Episode:    r.Episode,
		Resolution: r.Resolution,
		Source:     r.Source,
		Codec:      r.Codec,
		HDR:        r.HDR,
		Group:      r.Group,
	}
	if r.Type != rls.Unknown {
		info.Type = strings.ToLower(r.Type.String())
	}
	return info
}
