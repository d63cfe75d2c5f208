// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/ipt/internal/domain"
	"github.com/autobrr/ipt/internal/iptorrents"
	"github.com/autobrr/ipt/internal/releases"
)

const defaultRetryDelay = time.Second

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// Request is a search issued by the CLI or the HTTP API.
type Request struct {
	Title         string   `json:"title"`
	SearchStrings []string `json:"search_strings,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

// Result is a record decorated for display.
type Result struct {
	iptorrents.Record `yaml:",inline"`
	SizeHuman         string        `json:"size_human" yaml:"size_human"`
	Release           releases.Info `json:"release" yaml:"release"`
}

type Response struct {
	Results  []Result `json:"results" yaml:"results"`
	Total    int      `json:"total" yaml:"total"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Service runs searches and resolves urls on behalf of the outer surfaces.
// Timeouts and throttling responses are retried here, never in the adapter.
type Service struct {
	mu       sync.RWMutex
	adapter  *iptorrents.Adapter
	settings iptorrents.Settings

	parser     *releases.Parser
	retryDelay time.Duration
	opts       []iptorrents.Option
	log        zerolog.Logger
}

type Option func(*Service)

// WithAdapterOptions forwards options to every adapter the service builds.
func WithAdapterOptions(opts ...iptorrents.Option) Option {
	return func(s *Service) { s.opts = append(s.opts, opts...) }
}

func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) { s.retryDelay = d }
}

func WithReleaseParser(p *releases.Parser) Option {
	return func(s *Service) { s.parser = p }
}

func NewService(settings iptorrents.Settings, opts ...Option) *Service {
	s := &Service{
		settings:   settings,
		retryDelay: defaultRetryDelay,
		log:        log.Logger.With().Str("module", "search").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = releases.NewDefaultParser()
	}
	s.adapter = iptorrents.New(settings, s.opts...)
	return s
}

// Reload rebuilds the adapter from a changed config section. An invalid
// section is logged and the current adapter is kept.
func (s *Service) Reload(cfg *domain.Config) {
	settings, err := iptorrents.NewSettings(cfg.IPTorrents)
	if err != nil {
		s.log.Error().Err(err).Msg("Ignoring invalid iptorrents configuration")
		return
	}

	adapter := iptorrents.New(settings, s.opts...)

	s.mu.Lock()
	s.settings = settings
	s.adapter = adapter
	s.mu.Unlock()

	s.log.Info().Msg("Reloaded iptorrents configuration")
}

func (s *Service) current() (*iptorrents.Adapter, iptorrents.Settings) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adapter, s.settings
}

func (s *Service) Categories() []iptorrents.CategoryInfo {
	return iptorrents.Categories()
}

func (s *Service) Recognizes(rawURL string) bool {
	adapter, _ := s.current()
	return adapter.Recognizes(rawURL)
}

// Search validates req, runs it and returns the results sorted for display.
// Pages without a results table are reported as warnings when other terms
// produced results.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	codes, err := parseCategories(req.Categories)
	if err != nil {
		return nil, err
	}

	entry := iptorrents.Entry{Title: req.Title, SearchStrings: req.SearchStrings}
	if len(entry.Terms()) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, iptorrents.ErrNoSearchTerms)
	}

	adapter, settings := s.current()

	var records []iptorrents.Record
	err = s.withRetry(ctx, settings.Retries, func() error {
		var searchErr error
		records, searchErr = adapter.SearchIn(ctx, entry, codes)
		return searchErr
	})

	var warnings []string
	if err != nil {
		if !errors.Is(err, &iptorrents.MalformedPageError{}) || len(records) == 0 {
			return nil, err
		}
		warnings = append(warnings, err.Error())
	}

	iptorrents.SortForDisplay(records)

	results := make([]Result, 0, len(records))
	for _, r := range records {
		results = append(results, Result{
			Record:    r,
			SizeHuman: humanize.IBytes(uint64(r.Size)),
			Release:   s.parser.Describe(r.Title),
		})
	}

	return &Response{Results: results, Total: len(results), Warnings: warnings}, nil
}

// Resolve rewrites a search url into a download url.
func (s *Service) Resolve(ctx context.Context, entry iptorrents.Entry) (iptorrents.Entry, error) {
	adapter, settings := s.current()
	if !adapter.Recognizes(entry.URL) {
		return entry, fmt.Errorf("%w: url %q is not handled by this adapter", ErrInvalidRequest, entry.URL)
	}

	resolved := entry
	err := s.withRetry(ctx, settings.Retries, func() error {
		var resolveErr error
		resolved, resolveErr = adapter.Resolve(ctx, entry)
		return resolveErr
	})
	if err != nil {
		return entry, err
	}
	return resolved, nil
}

func (s *Service) withRetry(ctx context.Context, retries int, fn func() error) error {
	return retry.Do(fn,
		retry.Attempts(uint(retries)+1),
		retry.Delay(s.retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			s.log.Warn().Err(err).Uint("attempt", n+1).Msg("Retrying search")
		}),
	)
}

// retryable reports whether a failed attempt may succeed when repeated.
func retryable(err error) bool {
	if errors.Is(err, &iptorrents.TimeoutError{}) {
		return true
	}
	var statusErr *iptorrents.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.IsRateLimited() || statusErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

func parseCategories(raw []string) ([]iptorrents.Category, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	specs, err := iptorrents.ParseCategorySpecs(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	codes, err := iptorrents.ResolveCategories(specs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return codes, nil
}
