// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Adapter searches the site and resolves search urls to download urls.
type Adapter struct {
	settings  Settings
	fetcher   *Fetcher
	extractor *Extractor
	metrics   Metrics
	log       zerolog.Logger

	httpClient *http.Client
}

type Option func(*Adapter)

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) { a.log = logger }
}

// WithHTTPClient replaces the client used for page requests. Its Timeout is
// left alone; the adapter applies Settings.Timeout per request.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) { a.httpClient = client }
}

func WithMetrics(m Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

func New(s Settings, opts ...Option) *Adapter {
	a := &Adapter{
		settings: s,
		metrics:  nopMetrics{},
		log:      log.Logger.With().Str("module", "iptorrents").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.httpClient == nil {
		a.httpClient = &http.Client{}
	}
	if a.metrics == nil {
		a.metrics = nopMetrics{}
	}

	a.fetcher = NewFetcher(s, a.httpClient, a.metrics, a.log.With().Str("component", "fetcher").Logger())
	a.extractor = NewExtractor(s, a.metrics, a.log.With().Str("component", "extractor").Logger())
	return a
}

func (a *Adapter) Settings() Settings {
	return a.settings
}

// Search runs one request per search term of the entry using the configured
// categories.
func (a *Adapter) Search(ctx context.Context, entry Entry) ([]Record, error) {
	return a.SearchIn(ctx, entry, a.settings.Categories)
}

// SearchIn runs one request per search term of the entry in the given
// categories and returns the de-duplicated records in no particular order.
//
// Authentication, timeout and transport failures abort the search and no
// records are returned. A page without a results table only fails its own
// term: the records of the other terms are returned together with the
// joined *MalformedPageError values.
func (a *Adapter) SearchIn(ctx context.Context, entry Entry, codes []Category) ([]Record, error) {
	terms := entry.Terms()
	if len(terms) == 0 {
		return nil, ErrNoSearchTerms
	}
	if len(codes) == 0 {
		codes = a.settings.Categories
	}

	results := NewResultSet()
	var (
		malformed []error
		err       error
	)
	if a.settings.Concurrency > 1 && len(terms) > 1 {
		malformed, err = a.searchParallel(ctx, terms, codes, results)
	} else {
		malformed, err = a.searchSequential(ctx, terms, codes, results)
	}
	if err != nil {
		a.metrics.ObserveSearch(fetchOutcome(err), 0)
		a.log.Error().Err(err).Str("title", entry.Title).Msg("search aborted")
		return nil, err
	}

	records := results.Records()
	if len(malformed) > 0 {
		a.metrics.ObserveSearch(OutcomeMalformed, len(records))
		return records, errors.Join(malformed...)
	}
	a.metrics.ObserveSearch(OutcomeSuccess, len(records))
	a.log.Debug().Str("title", entry.Title).Int("terms", len(terms)).Int("records", len(records)).Msg("search finished")
	return records, nil
}

// searchTerm fetches and extracts one term into results.
func (a *Adapter) searchTerm(ctx context.Context, term string, codes []Category, results *ResultSet) error {
	path := BuildSearchPath(term, codes)
	a.log.Debug().Str("term", term).Str("url", a.settings.SiteURL+path).Msg("searching")

	body, err := a.fetcher.Fetch(ctx, path)
	if err != nil {
		return err
	}
	records, err := a.extractor.Extract(term, body)
	if err != nil {
		return err
	}
	results.AddAll(records)
	return nil
}

func (a *Adapter) searchSequential(ctx context.Context, terms []string, codes []Category, results *ResultSet) ([]error, error) {
	var malformed []error
	for _, term := range terms {
		if err := a.searchTerm(ctx, term, codes, results); err != nil {
			if !errors.Is(err, &MalformedPageError{}) {
				return nil, err
			}
			a.log.Warn().Err(err).Str("term", term).Msg("results table missing")
			malformed = append(malformed, err)
		}
	}
	return malformed, nil
}

func (a *Adapter) searchParallel(ctx context.Context, terms []string, codes []Category, results *ResultSet) ([]error, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.settings.Concurrency)

	var (
		mu        sync.Mutex
		malformed []error
	)

	for _, term := range terms {
		g.Go(func() error {
			err := a.searchTerm(gctx, term, codes, results)
			if err == nil {
				return nil
			}
			if !errors.Is(err, &MalformedPageError{}) {
				return err
			}
			a.log.Warn().Err(err).Str("term", term).Msg("results table missing")
			mu.Lock()
			malformed = append(malformed, err)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return malformed, nil
}
