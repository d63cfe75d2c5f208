// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/ipt/internal/domain"
)

func validConfig() domain.IPTorrentsConfig {
	return domain.IPTorrentsConfig{
		RSSKey:   testRSSKey,
		UID:      int64(12345),
		Password: testPass,
	}
}

func TestNewSettings_Defaults(t *testing.T) {
	s, err := NewSettings(validConfig())
	require.NoError(t, err)

	assert.Equal(t, DefaultSiteURL, s.SiteURL)
	assert.Equal(t, "12345", s.UID)
	assert.Equal(t, []Category{CategoryAll}, s.Categories)
	assert.Equal(t, DefaultTimeout, s.Timeout)
	assert.Equal(t, DefaultConcurrency, s.Concurrency)
	assert.Equal(t, ResolveFirst, s.ResolvePolicy)
	assert.Equal(t, 0, s.Retries)
}

func TestNewSettings_Overrides(t *testing.T) {
	cfg := validConfig()
	cfg.SiteURL = "https://mirror.example.org/"
	cfg.UID = "abc"
	cfg.Category = []any{"Movie-4K", int64(5)}
	cfg.Timeout = 5 * time.Second
	cfg.Concurrency = 4
	cfg.ResolvePolicy = "Closest"
	cfg.Retries = 2

	s, err := NewSettings(cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example.org", s.SiteURL)
	assert.Equal(t, "abc", s.UID)
	assert.Equal(t, []Category{101, 5}, s.Categories)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, 4, s.Concurrency)
	assert.Equal(t, ResolveClosest, s.ResolvePolicy)
	assert.Equal(t, 2, s.Retries)
}

func TestNewSettings_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.IPTorrentsConfig)
	}{
		{name: "missing rss key", mutate: func(c *domain.IPTorrentsConfig) { c.RSSKey = "  " }},
		{name: "missing password", mutate: func(c *domain.IPTorrentsConfig) { c.Password = "" }},
		{name: "missing uid", mutate: func(c *domain.IPTorrentsConfig) { c.UID = nil }},
		{name: "blank uid", mutate: func(c *domain.IPTorrentsConfig) { c.UID = " " }},
		{name: "uid of wrong type", mutate: func(c *domain.IPTorrentsConfig) { c.UID = true }},
		{name: "fractional uid", mutate: func(c *domain.IPTorrentsConfig) { c.UID = 1.5 }},
		{name: "relative site url", mutate: func(c *domain.IPTorrentsConfig) { c.SiteURL = "iptorrents.com" }},
		{name: "unknown policy", mutate: func(c *domain.IPTorrentsConfig) { c.ResolvePolicy = "best" }},
		{name: "unknown category", mutate: func(c *domain.IPTorrentsConfig) { c.Category = "Movie-8K" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			_, err := NewSettings(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewSettings_UnknownCategoryIsTyped(t *testing.T) {
	cfg := validConfig()
	cfg.Category = []any{"TV-x264", "Movie-8K"}

	_, err := NewSettings(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, &UnknownCategoryError{})
	assert.Contains(t, err.Error(), "Movie-8K")
}

func TestSettings_WithCategories(t *testing.T) {
	s, err := NewSettings(validConfig())
	require.NoError(t, err)

	assert.Equal(t, []Category{CategoryAll}, s.WithCategories(nil).Categories)
	assert.Equal(t, []Category{73}, s.WithCategories([]Category{73}).Categories)
	assert.Equal(t, []Category{CategoryAll}, s.Categories)
}
