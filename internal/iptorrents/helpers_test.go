// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/ipt/internal/domain"
	"github.com/autobrr/ipt/internal/iptorrents/iptorrentstest"
)

const (
	testUID    = iptorrentstest.UID
	testPass   = iptorrentstest.Password
	testRSSKey = iptorrentstest.RSSKey
)

type fixtureRow struct {
	id      int
	title   string
	size    string
	seeds   string
	leeches string
}

type fakeSite = iptorrentstest.Site

func headerRow() string    { return iptorrentstest.HeaderRow() }
func noResultsRow() string { return iptorrentstest.NoResultsRow() }
func loginPage() string    { return iptorrentstest.LoginPage() }

func dataRow(r fixtureRow) string {
	return iptorrentstest.DataRow(iptorrentstest.Row{
		ID: r.id, Title: r.title, Size: r.size, Seeds: r.seeds, Leeches: r.leeches,
	})
}

func resultsPage(uid string, rows ...string) string {
	return iptorrentstest.ResultsPage(uid, rows...)
}

func loggedInPageWithoutTable(uid string) string {
	return iptorrentstest.PageWithoutTable(uid)
}

func newFakeSite(t *testing.T, pages map[string]string) (*fakeSite, *httptest.Server) {
	t.Helper()
	return iptorrentstest.NewSite(t, pages)
}

func testSettings(t *testing.T, siteURL string, mutate ...func(*domain.IPTorrentsConfig)) Settings {
	t.Helper()
	cfg := iptorrentstest.Config(siteURL)
	for _, fn := range mutate {
		fn(&cfg)
	}
	s, err := NewSettings(cfg)
	require.NoError(t, err)
	return s
}

func newTestAdapter(t *testing.T, siteURL string, mutate ...func(*domain.IPTorrentsConfig)) *Adapter {
	t.Helper()
	return New(testSettings(t, siteURL, mutate...), WithLogger(zerolog.Nop()))
}
