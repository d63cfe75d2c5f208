// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/autobrr/ipt/internal/buildinfo"
)

const maxPageBytes int64 = 8 << 20 // 8 MiB upper bound for a results page

// Fetcher performs authenticated page requests against the site. It holds no
// mutable state and may be shared between goroutines.
type Fetcher struct {
	client   *http.Client
	siteURL  string
	uid      string
	password string
	timeout  time.Duration
	metrics  Metrics
	log      zerolog.Logger
}

func NewFetcher(s Settings, client *http.Client, metrics Metrics, logger zerolog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Fetcher{
		client:   client,
		siteURL:  s.SiteURL,
		uid:      s.UID,
		password: s.Password,
		timeout:  s.Timeout,
		metrics:  metrics,
		log:      logger,
	}
}

// loggedInMarker is present on every page served to an authenticated user.
func (f *Fetcher) loggedInMarker() []byte {
	return []byte("/u/" + f.uid)
}

// Fetch requests the site-relative path with the session cookies attached and
// returns the body once the logged-in marker has been found in it.
func (f *Fetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	target := f.siteURL + path
	start := time.Now()

	body, err := f.do(ctx, target)
	if err != nil {
		f.metrics.ObserveFetch(fetchOutcome(err), time.Since(start))
		return nil, err
	}

	if !bytes.Contains(body, f.loggedInMarker()) {
		err := &AuthenticationError{UID: f.uid, URL: target}
		f.metrics.ObserveFetch(fetchOutcome(err), time.Since(start))
		return nil, err
	}

	f.metrics.ObserveFetch(OutcomeSuccess, time.Since(start))
	f.log.Debug().Str("url", target).Int("bytes", len(body)).Dur("took", time.Since(start)).Msg("fetched search page")
	return body, nil
}

func (f *Fetcher) do(ctx context.Context, target string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.AddCookie(&http.Cookie{Name: "uid", Value: f.uid})
	req.AddCookie(&http.Cookie{Name: "pass", Value: f.password})

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.wrapTransportError(ctx, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &HTTPStatusError{URL: target, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return nil, f.wrapTransportError(ctx, target, err)
	}
	if int64(len(data)) > maxPageBytes {
		return nil, fmt.Errorf("search page from %s exceeded %d bytes limit", target, maxPageBytes)
	}
	return data, nil
}

// wrapTransportError turns deadline failures into *TimeoutError. A parent
// context that was cancelled by the caller is returned as is.
func (f *Fetcher) wrapTransportError(parent context.Context, target string, err error) error {
	if parent.Err() != nil && errors.Is(parent.Err(), context.Canceled) {
		return parent.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{URL: target, Timeout: f.timeout, Err: err}
	}
	return fmt.Errorf("search request to %s failed: %w", target, err)
}
