// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid iptorrents configuration")

// ErrNoSearchTerms is returned when an entry has neither search strings nor
// a title.
var ErrNoSearchTerms = errors.New("entry has no title or search strings")

// UnknownCategoryError is returned when a category name is not part of the
// site's category table. It only ever surfaces while validating configuration.
type UnknownCategoryError struct {
	Name string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Name)
}

func (e *UnknownCategoryError) Is(target error) bool {
	_, ok := target.(*UnknownCategoryError)
	return ok
}

// AuthenticationError means the site served a page without the logged-in
// marker for the configured uid. The whole search is aborted.
type AuthenticationError struct {
	UID string
	URL string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("invalid cookies (user %s not logged in)", e.UID)
}

func (e *AuthenticationError) Is(target error) bool {
	_, ok := target.(*AuthenticationError)
	return ok
}

// MalformedPageError means the results table is missing from the page.
type MalformedPageError struct {
	Term string
}

func (e *MalformedPageError) Error() string {
	return fmt.Sprintf("results table not found for search %q", e.Term)
}

func (e *MalformedPageError) Is(target error) bool {
	_, ok := target.(*MalformedPageError)
	return ok
}

// RowParseError describes a single result row that could not be converted.
// Row is the 0-based index of the row inside the results table.
type RowParseError struct {
	Row    int
	Reason string
	Err    error
}

func (e *RowParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Reason, e.Err)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e *RowParseError) Unwrap() error { return e.Err }

func (e *RowParseError) Is(target error) bool {
	_, ok := target.(*RowParseError)
	return ok
}

// NoResultsError is returned by Resolve when the search yields nothing.
type NoResultsError struct {
	Query string
}

func (e *NoResultsError) Error() string {
	if strings.TrimSpace(e.Query) == "" {
		return "no search results found"
	}
	return fmt.Sprintf("no search results found for %q", e.Query)
}

func (e *NoResultsError) Is(target error) bool {
	_, ok := target.(*NoResultsError)
	return ok
}

// TimeoutError wraps a request that exceeded the configured timeout.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.URL, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool {
	_, ok := target.(*TimeoutError)
	return ok
}

// HTTPStatusError is returned when the site answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d (location=%s)", e.URL, e.StatusCode, loc)
}

func (e *HTTPStatusError) Is(target error) bool {
	_, ok := target.(*HTTPStatusError)
	return ok
}

// IsRateLimited returns true if this error indicates rate limiting (HTTP 429).
func (e *HTTPStatusError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
