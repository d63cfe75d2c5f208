// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package iptorrentstest serves canned IPTorrents pages for tests.
package iptorrentstest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/autobrr/ipt/internal/domain"
)

const (
	UID      = "12345"
	Password = "secret-pass"
	RSSKey   = "feedkey123"
)

type Row struct {
	ID      int
	Title   string
	Size    string
	Seeds   string
	Leeches string
}

func HeaderRow() string {
	return `<tr><th class="ac">Type</th><th class="al">Name</th><th class="ac">Size</th><th class="ac">Seeders</th><th class="ac">Leechers</th></tr>`
}

func NoResultsRow() string {
	return `<tr><td colspan="99">Nothing found!</td></tr>`
}

func DataRow(r Row) string {
	return fmt.Sprintf(`<tr>
<td class="ac"><a href="/t?72"><img alt="Movie"></a></td>
<td class="al"><a class="hv" href="/details.php?id=%[1]d">%[2]s</a><div class="sub">5 minutes ago</div></td>
<td class="ac"><a href="/download.php/%[1]d/%[2]s.torrent"><i class="fa fa-download"></i></a></td>
<td class="ac">%[3]s</td>
<td class="ac t_seeders">%[4]s</td>
<td class="ac t_leechers">%[5]s</td>
</tr>`, r.ID, r.Title, r.Size, r.Seeds, r.Leeches)
}

// ResultsPage renders a logged-in page with a results table made of rows.
func ResultsPage(uid string, rows ...string) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><head><title>IPTorrents</title></head><body>
<div id="menu"><a href="/u/%s">Profile</a></div>
<table id="torrents">%s</table>
</body></html>`, uid, strings.Join(rows, "\n"))
}

// PageWithoutTable is a logged-in page that lacks the results table.
func PageWithoutTable(uid string) string {
	return fmt.Sprintf(`<html><body><a href="/u/%s">Profile</a><p>Maintenance</p></body></html>`, uid)
}

func LoginPage() string {
	return `<html><body><form action="/take_login.php"><input name="username"></form></body></html>`
}

// Site serves pages keyed by the q parameter and records every request.
// Unknown queries get an empty results page.
type Site struct {
	mu       sync.Mutex
	pages    map[string]string
	requests []*http.Request
	delay    time.Duration
	failures []int
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(r.Context()))
	page, ok := s.pages[r.URL.Query().Get("q")]
	delay := s.delay
	status := 0
	if len(s.failures) > 0 {
		status, s.failures = s.failures[0], s.failures[1:]
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !ok {
		page = ResultsPage(UID, HeaderRow(), NoResultsRow())
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *Site) SetPage(query, page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[query] = page
}

func (s *Site) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// FailNext answers the next len(codes) requests with the given statuses.
func (s *Site) FailNext(codes ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, codes...)
}

func (s *Site) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

// NewSite starts a server for pages and closes it when the test ends.
func NewSite(t testing.TB, pages map[string]string) (*Site, *httptest.Server) {
	t.Helper()
	if pages == nil {
		pages = make(map[string]string)
	}
	site := &Site{pages: pages}
	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)
	return site, srv
}

// Config returns a valid site section pointing at siteURL.
func Config(siteURL string) domain.IPTorrentsConfig {
	return domain.IPTorrentsConfig{
		SiteURL:  siteURL,
		RSSKey:   RSSKey,
		UID:      UID,
		Password: Password,
	}
}
