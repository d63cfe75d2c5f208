// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import "time"

type Config struct {
	Version       string
	Host          string `toml:"host" mapstructure:"host"`
	Port          int    `toml:"port" mapstructure:"port"`
	BaseURL       string `toml:"baseUrl" mapstructure:"baseUrl"`
	APIKey        string `toml:"apiKey" mapstructure:"apiKey"`
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	MetricsEnabled        bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost           string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort           int    `toml:"metricsPort" mapstructure:"metricsPort"`
	MetricsBasicAuthUsers string `toml:"metricsBasicAuthUsers" mapstructure:"metricsBasicAuthUsers"`

	IPTorrents IPTorrentsConfig `toml:"iptorrents" mapstructure:"iptorrents"`
}

// IPTorrentsConfig is the raw, unvalidated site section of the config file.
// UID and Category are loosely typed on purpose: the file may carry either an
// integer or a string (or a list for Category). iptorrents.NewSettings turns
// them into typed values.
type IPTorrentsConfig struct {
	SiteURL       string        `toml:"siteUrl" mapstructure:"siteUrl"`
	RSSKey        string        `toml:"rssKey" mapstructure:"rssKey"`
	UID           any           `toml:"uid" mapstructure:"uid"`
	Password      string        `toml:"password" mapstructure:"password"`
	Category      any           `toml:"category" mapstructure:"category"`
	Timeout       time.Duration `toml:"timeout" mapstructure:"timeout"`
	Concurrency   int           `toml:"concurrency" mapstructure:"concurrency"`
	ResolvePolicy string        `toml:"resolvePolicy" mapstructure:"resolvePolicy"`
	Retries       int           `toml:"retries" mapstructure:"retries"`
}
