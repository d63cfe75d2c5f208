// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"errors"
	"time"
)

// Outcome labels shared by fetch and search observations.
const (
	OutcomeSuccess   = "success"
	OutcomeAuth      = "auth_error"
	OutcomeTimeout   = "timeout"
	OutcomeMalformed = "malformed_page"
	OutcomeHTTP      = "http_error"
	OutcomeError     = "error"
)

// Metrics receives adapter observations. internal/metrics provides the
// Prometheus implementation.
type Metrics interface {
	ObserveFetch(outcome string, took time.Duration)
	ObserveRows(parsed, skipped int)
	ObserveSearch(outcome string, records int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveFetch(string, time.Duration) {}
func (nopMetrics) ObserveRows(int, int)               {}
func (nopMetrics) ObserveSearch(string, int)          {}

func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, &AuthenticationError{}):
		return OutcomeAuth
	case errors.Is(err, &TimeoutError{}):
		return OutcomeTimeout
	case errors.Is(err, &MalformedPageError{}):
		return OutcomeMalformed
	case errors.Is(err, &HTTPStatusError{}):
		return OutcomeHTTP
	default:
		return OutcomeError
	}
}
