// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/ipt/internal/iptorrents"
	"github.com/autobrr/ipt/internal/services/search"
)

type stubService struct {
	searchErr  error
	resolveErr error
	recognized bool
	lastReq    search.Request
}

func (s *stubService) Categories() []iptorrents.CategoryInfo { return iptorrents.Categories() }
func (s *stubService) Recognizes(string) bool               { return s.recognized }

func (s *stubService) Search(_ context.Context, req search.Request) (*search.Response, error) {
	s.lastReq = req
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return &search.Response{Results: []search.Result{}}, nil
}

func (s *stubService) Resolve(_ context.Context, entry iptorrents.Entry) (iptorrents.Entry, error) {
	if s.resolveErr != nil {
		return entry, s.resolveErr
	}
	entry.URL = "https://iptorrents.com/download.php/1/x.torrent"
	return entry, nil
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: fmt.Errorf("%w: bad", search.ErrInvalidRequest), want: http.StatusBadRequest},
		{name: "no results", err: &iptorrents.NoResultsError{Query: "x"}, want: http.StatusNotFound},
		{name: "timeout", err: &iptorrents.TimeoutError{URL: "u"}, want: http.StatusGatewayTimeout},
		{name: "auth", err: &iptorrents.AuthenticationError{UID: "1"}, want: http.StatusBadGateway},
		{name: "malformed joined", err: errors.Join(&iptorrents.MalformedPageError{Term: "a"}), want: http.StatusBadGateway},
		{name: "status", err: &iptorrents.HTTPStatusError{StatusCode: 503}, want: http.StatusBadGateway},
		{name: "canceled", err: context.Canceled, want: 499},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestIPTorrentsHandler_SearchDecodesBody(t *testing.T) {
	svc := &stubService{}
	r := chi.NewRouter()
	NewIPTorrentsHandler(svc).Routes(r)

	body := `{"title":"Dune","search_strings":["Dune 2021"],"categories":["Movie-4K","48"]}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, search.Request{
		Title:         "Dune",
		SearchStrings: []string{"Dune 2021"},
		Categories:    []string{"Movie-4K", "48"},
	}, svc.lastReq)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestIPTorrentsHandler_Resolve(t *testing.T) {
	tests := []struct {
		name string
		svc  *stubService
		want int
	}{
		{name: "resolved", svc: &stubService{recognized: true}, want: http.StatusOK},
		{name: "not recognized", svc: &stubService{}, want: http.StatusUnprocessableEntity},
		{name: "no results", svc: &stubService{recognized: true, resolveErr: &iptorrents.NoResultsError{}}, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewIPTorrentsHandler(tt.svc).Routes(r)

			rec := httptest.NewRecorder()
			body := `{"title":"x","url":"https://iptorrents.com/t?q=x"}`
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/resolve", strings.NewReader(body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestIPTorrentsHandler_RecognizeRequiresURL(t *testing.T) {
	r := chi.NewRouter()
	NewIPTorrentsHandler(&stubService{}).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recognize", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
