// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/ipt/internal/iptorrents"
)

var _ iptorrents.Metrics = (*Metrics)(nil)

func newTestMetrics() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

func TestMetrics_Observe(t *testing.T) {
	m := newTestMetrics()

	m.ObserveFetch(iptorrents.OutcomeSuccess, 120*time.Millisecond)
	m.ObserveFetch(iptorrents.OutcomeSuccess, 80*time.Millisecond)
	m.ObserveFetch(iptorrents.OutcomeAuth, 10*time.Millisecond)
	m.ObserveRows(3, 1)
	m.ObserveRows(2, 0)
	m.ObserveSearch(iptorrents.OutcomeSuccess, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues(iptorrents.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues(iptorrents.OutcomeAuth)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RowsParsedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsSkippedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues(iptorrents.OutcomeSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SearchResults))
}

func TestMetrics_Middleware(t *testing.T) {
	m := newTestMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/items/{id}", "418")))
}

func TestParseBasicAuthUsers(t *testing.T) {
	users, err := ParseBasicAuthUsers("alice:one, bob:two,")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "one", "bob": "two"}, users)

	users, err = ParseBasicAuthUsers("")
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = ParseBasicAuthUsers("alice")
	assert.Error(t, err)
	_, err = ParseBasicAuthUsers(":pass")
	assert.Error(t, err)
}

func TestHandler_BasicAuth(t *testing.T) {
	m := newTestMetrics()
	m.ObserveSearch(iptorrents.OutcomeSuccess, 1)
	h := m.Handler(map[string]string{"alice": "secret"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("alice", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ipt_searches_total"))
}

func TestHandler_Open(t *testing.T) {
	m := newTestMetrics()
	m.ObserveRows(1, 0)

	rec := httptest.NewRecorder()
	m.Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ipt_rows_parsed_total 1")
}
