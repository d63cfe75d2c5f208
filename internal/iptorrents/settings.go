// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/autobrr/ipt/internal/domain"
)

const (
	DefaultSiteURL     = "https://iptorrents.com"
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 1
)

// ResolvePolicy selects which candidate Resolve picks from the result set.
type ResolvePolicy string

const (
	// ResolveFirst picks the first candidate in presentation order.
	ResolveFirst ResolvePolicy = "first"
	// ResolveClosest picks the candidate whose title is closest to the query.
	ResolveClosest ResolvePolicy = "closest"
)

// Settings is the validated adapter configuration. It is never mutated after
// NewSettings returns.
type Settings struct {
	SiteURL       string
	RSSKey        string
	UID           string
	Password      string
	Categories    []Category
	Timeout       time.Duration
	Concurrency   int
	ResolvePolicy ResolvePolicy
	Retries       int
}

// NewSettings validates the raw config section. Every failure wraps
// ErrInvalidConfig; unknown category names additionally match
// *UnknownCategoryError.
func NewSettings(cfg domain.IPTorrentsConfig) (Settings, error) {
	s := Settings{
		SiteURL:       DefaultSiteURL,
		RSSKey:        strings.TrimSpace(cfg.RSSKey),
		Password:      cfg.Password,
		Timeout:       cfg.Timeout,
		Concurrency:   cfg.Concurrency,
		ResolvePolicy: ResolvePolicy(strings.ToLower(strings.TrimSpace(cfg.ResolvePolicy))),
		Retries:       cfg.Retries,
	}

	if raw := strings.TrimSpace(cfg.SiteURL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return Settings{}, fmt.Errorf("%w: siteUrl %q is not an absolute url", ErrInvalidConfig, raw)
		}
		s.SiteURL = strings.TrimRight(parsed.Scheme+"://"+parsed.Host+parsed.Path, "/")
	}

	if s.RSSKey == "" {
		return Settings{}, fmt.Errorf("%w: rssKey is required", ErrInvalidConfig)
	}
	if s.Password == "" {
		return Settings{}, fmt.Errorf("%w: password is required", ErrInvalidConfig)
	}

	uid, err := normalizeUID(cfg.UID)
	if err != nil {
		return Settings{}, err
	}
	s.UID = uid

	specs, err := ParseCategorySpecs(cfg.Category)
	if err != nil {
		return Settings{}, err
	}
	codes, err := ResolveCategories(specs)
	if err != nil {
		if errors.Is(err, ErrInvalidConfig) {
			return Settings{}, err
		}
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	s.Categories = codes

	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Concurrency <= 0 {
		s.Concurrency = DefaultConcurrency
	}
	if s.Retries < 0 {
		s.Retries = 0
	}

	switch s.ResolvePolicy {
	case "":
		s.ResolvePolicy = ResolveFirst
	case ResolveFirst, ResolveClosest:
	default:
		return Settings{}, fmt.Errorf("%w: unknown resolvePolicy %q", ErrInvalidConfig, cfg.ResolvePolicy)
	}

	return s, nil
}

// normalizeUID accepts the uid as an integer or a string and returns the
// cookie value.
func normalizeUID(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", fmt.Errorf("%w: uid is required", ErrInvalidConfig)
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return "", fmt.Errorf("%w: uid is required", ErrInvalidConfig)
		}
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		if v != math.Trunc(v) {
			return "", fmt.Errorf("%w: uid %v is not an integer", ErrInvalidConfig, v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return "", fmt.Errorf("%w: uid must be an integer or a string, got %T", ErrInvalidConfig, raw)
	}
}

// WithCategories returns a copy of s searching the given categories instead.
// An empty list keeps the configured categories.
func (s Settings) WithCategories(codes []Category) Settings {
	if len(codes) == 0 {
		return s
	}
	s.Categories = append([]Category(nil), codes...)
	return s
}
