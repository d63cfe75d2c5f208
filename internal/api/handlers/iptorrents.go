// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/ipt/internal/iptorrents"
	"github.com/autobrr/ipt/internal/services/search"
)

// SearchService is the part of search.Service the handlers depend on.
type SearchService interface {
	Categories() []iptorrents.CategoryInfo
	Recognizes(rawURL string) bool
	Search(ctx context.Context, req search.Request) (*search.Response, error)
	Resolve(ctx context.Context, entry iptorrents.Entry) (iptorrents.Entry, error)
}

// ResolveRequest is the body of POST /resolve.
type ResolveRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ResolveResponse struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type RecognizeResponse struct {
	Recognized bool `json:"recognized"`
}

// IPTorrentsHandler exposes search and url resolution over HTTP.
type IPTorrentsHandler struct {
	service SearchService
}

func NewIPTorrentsHandler(service SearchService) *IPTorrentsHandler {
	return &IPTorrentsHandler{service: service}
}

// Routes registers the iptorrents routes
func (h *IPTorrentsHandler) Routes(r chi.Router) {
	r.Get("/categories", h.ListCategories)
	r.Post("/search", h.Search)
	r.Post("/resolve", h.Resolve)
	r.Get("/recognize", h.Recognize)
}

// ListCategories godoc
// @Summary List categories
// @Tags iptorrents
// @Produce json
// @Success 200 {array} iptorrents.CategoryInfo
// @Router /api/categories [get]
func (h *IPTorrentsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.service.Categories())
}

// Search godoc
// @Summary Search releases
// @Tags iptorrents
// @Accept json
// @Produce json
// @Param request body search.Request true "Search request"
// @Success 200 {object} search.Response
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /api/search [post]
func (h *IPTorrentsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Search(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "search failed")
		return
	}

	RespondJSON(w, http.StatusOK, resp)
}

// Resolve godoc
// @Summary Resolve a search url into a download url
// @Tags iptorrents
// @Accept json
// @Produce json
// @Param request body ResolveRequest true "Entry to resolve"
// @Success 200 {object} ResolveResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/resolve [post]
func (h *IPTorrentsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		RespondError(w, http.StatusBadRequest, "url is required")
		return
	}

	if !h.service.Recognizes(req.URL) {
		RespondError(w, http.StatusUnprocessableEntity, "url is not an iptorrents url")
		return
	}

	entry, err := h.service.Resolve(r.Context(), iptorrents.Entry{Title: req.Title, URL: req.URL})
	if err != nil {
		h.respondServiceError(w, err, "resolve failed")
		return
	}

	RespondJSON(w, http.StatusOK, ResolveResponse{Title: entry.Title, URL: entry.URL})
}

// Recognize godoc
// @Summary Check whether a url belongs to the site
// @Tags iptorrents
// @Produce json
// @Param url query string true "URL to check"
// @Success 200 {object} RecognizeResponse
// @Router /api/recognize [get]
func (h *IPTorrentsHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		RespondError(w, http.StatusBadRequest, "url is required")
		return
	}
	RespondJSON(w, http.StatusOK, RecognizeResponse{Recognized: h.service.Recognizes(raw)})
}

func (h *IPTorrentsHandler) respondServiceError(w http.ResponseWriter, err error, msg string) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
	} else {
		log.Debug().Err(err).Msg(msg)
	}
	RespondError(w, status, err.Error())
}

// StatusForError maps adapter and service errors to response codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, search.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, &iptorrents.NoResultsError{}):
		return http.StatusNotFound
	case errors.Is(err, &iptorrents.TimeoutError{}), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, &iptorrents.AuthenticationError{}),
		errors.Is(err, &iptorrents.MalformedPageError{}),
		errors.Is(err, &iptorrents.HTTPStatusError{}):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}
