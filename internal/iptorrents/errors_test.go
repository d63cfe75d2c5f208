// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "unknown category", err: &UnknownCategoryError{Name: "Movie-8K"}, want: `unknown category "Movie-8K"`},
		{name: "authentication", err: &AuthenticationError{UID: "12345"}, want: "invalid cookies (user 12345 not logged in)"},
		{name: "malformed page", err: &MalformedPageError{Term: "ubuntu"}, want: `results table not found for search "ubuntu"`},
		{name: "row parse", err: &RowParseError{Row: 3, Reason: "missing size"}, want: "row 3: missing size"},
		{name: "row parse with cause", err: &RowParseError{Row: 1, Reason: "invalid seeders", Err: errors.New(`"x" is not an integer`)}, want: `row 1: invalid seeders: "x" is not an integer`},
		{name: "no results", err: &NoResultsError{}, want: "no search results found"},
		{name: "no results with query", err: &NoResultsError{Query: "ubuntu"}, want: `no search results found for "ubuntu"`},
		{name: "timeout", err: &TimeoutError{URL: "https://iptorrents.com/t", Timeout: 30 * time.Second}, want: "request to https://iptorrents.com/t timed out after 30s"},
		{name: "status", err: &HTTPStatusError{URL: "https://iptorrents.com/t", StatusCode: 503}, want: "https://iptorrents.com/t returned status 503"},
		{name: "status with location", err: &HTTPStatusError{URL: "https://iptorrents.com/t", StatusCode: 302, Location: "/login.php"}, want: "https://iptorrents.com/t returned status 302 (location=/login.php)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "wrapped authentication", err: fmt.Errorf("search: %w", &AuthenticationError{UID: "1"}), target: &AuthenticationError{}, want: true},
		{name: "authentication is not timeout", err: &AuthenticationError{}, target: &TimeoutError{}, want: false},
		{name: "joined malformed pages", err: errors.Join(&MalformedPageError{Term: "a"}, &MalformedPageError{Term: "b"}), target: &MalformedPageError{}, want: true},
		{name: "timeout unwraps to deadline", err: &TimeoutError{Err: context.DeadlineExceeded}, target: context.DeadlineExceeded, want: true},
		{name: "no results", err: &NoResultsError{Query: "x"}, target: &NoResultsError{}, want: true},
		{name: "status is not row parse error", err: &HTTPStatusError{}, target: &RowParseError{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestHTTPStatusError_IsRateLimited(t *testing.T) {
	assert.True(t, (&HTTPStatusError{StatusCode: http.StatusTooManyRequests}).IsRateLimited())
	assert.False(t, (&HTTPStatusError{StatusCode: http.StatusServiceUnavailable}).IsRateLimited())
}
