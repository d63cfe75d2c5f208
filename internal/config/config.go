// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/autobrr/ipt/internal/domain"
)

var envPrefix = "IPT__"

type AppConfig struct {
	Config  *domain.Config
	viper   *viper.Viper
	version string

	listenersMu sync.RWMutex
	listeners   []func(*domain.Config)
}

func New(configDirOrPath string, versions ...string) (*AppConfig, error) {
	version := "dev"
	if len(versions) > 0 && strings.TrimSpace(versions[0]) != "" {
		version = versions[0]
	}

	c := &AppConfig{
		viper:   viper.New(),
		Config:  &domain.Config{},
		version: version,
	}

	c.defaults()

	if err := c.load(configDirOrPath); err != nil {
		return nil, err
	}

	if err := c.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.Config.Version = c.version

	c.watchConfig()

	return c, nil
}

func (c *AppConfig) defaults() {
	host := "localhost"
	if detectContainer() {
		host = "0.0.0.0"
	}

	c.viper.SetDefault("host", host)
	c.viper.SetDefault("port", 7480)
	c.viper.SetDefault("baseUrl", "/")
	c.viper.SetDefault("apiKey", "")
	c.viper.SetDefault("logLevel", "INFO")
	c.viper.SetDefault("logPath", "")
	c.viper.SetDefault("logMaxSize", 50)
	c.viper.SetDefault("logMaxBackups", 3)
	c.viper.SetDefault("metricsEnabled", false)
	c.viper.SetDefault("metricsHost", "127.0.0.1")
	c.viper.SetDefault("metricsPort", 9080)
	c.viper.SetDefault("metricsBasicAuthUsers", "")

	c.viper.SetDefault("iptorrents.siteUrl", "https://iptorrents.com")
	c.viper.SetDefault("iptorrents.rssKey", "")
	c.viper.SetDefault("iptorrents.uid", "")
	c.viper.SetDefault("iptorrents.password", "")
	c.viper.SetDefault("iptorrents.category", "All")
	c.viper.SetDefault("iptorrents.timeout", "30s")
	c.viper.SetDefault("iptorrents.concurrency", 1)
	c.viper.SetDefault("iptorrents.resolvePolicy", "first")
	c.viper.SetDefault("iptorrents.retries", 0)
}

func (c *AppConfig) load(configDirOrPath string) error {
	c.viper.SetConfigType("toml")

	if configDirOrPath != "" {
		configPath := c.resolveConfigPath(configDirOrPath)
		c.viper.SetConfigFile(configPath)

		if err := c.viper.ReadInConfig(); err != nil {
			if !isNotFound(err) {
				return fmt.Errorf("failed to read config: %w", err)
			}
			if err := c.writeDefaultConfig(configPath); err != nil {
				return err
			}
			if err := c.viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read newly created config: %w", err)
			}
		}
		return nil
	}

	c.viper.SetConfigName("config")
	c.viper.AddConfigPath(".")
	c.viper.AddConfigPath(GetDefaultConfigDir())

	if err := c.viper.ReadInConfig(); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		defaultConfigPath := filepath.Join(GetDefaultConfigDir(), "config.toml")
		if err := c.writeDefaultConfig(defaultConfigPath); err != nil {
			return err
		}
		c.viper.SetConfigFile(defaultConfigPath)
		if err := c.viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read newly created config: %w", err)
		}
	}

	return nil
}

// isNotFound covers both viper's search miss and a missing explicit file.
func isNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return os.IsNotExist(err)
}

func (c *AppConfig) loadFromEnv() error {
	// Explicit bindings only; AutomaticEnv would pick up unrelated variables.
	c.viper.BindEnv("host", envPrefix+"HOST")
	c.viper.BindEnv("port", envPrefix+"PORT")
	c.viper.BindEnv("baseUrl", envPrefix+"BASE_URL")
	c.viper.BindEnv("logLevel", envPrefix+"LOG_LEVEL")
	c.viper.BindEnv("logPath", envPrefix+"LOG_PATH")
	c.viper.BindEnv("logMaxSize", envPrefix+"LOG_MAX_SIZE")
	c.viper.BindEnv("logMaxBackups", envPrefix+"LOG_MAX_BACKUPS")
	c.viper.BindEnv("metricsEnabled", envPrefix+"METRICS_ENABLED")
	c.viper.BindEnv("metricsHost", envPrefix+"METRICS_HOST")
	c.viper.BindEnv("metricsPort", envPrefix+"METRICS_PORT")
	c.viper.BindEnv("metricsBasicAuthUsers", envPrefix+"METRICS_BASIC_AUTH_USERS")

	c.viper.BindEnv("iptorrents.siteUrl", envPrefix+"IPTORRENTS_SITE_URL")
	c.viper.BindEnv("iptorrents.uid", envPrefix+"IPTORRENTS_UID")
	c.viper.BindEnv("iptorrents.category", envPrefix+"IPTORRENTS_CATEGORY")
	c.viper.BindEnv("iptorrents.timeout", envPrefix+"IPTORRENTS_TIMEOUT")
	c.viper.BindEnv("iptorrents.concurrency", envPrefix+"IPTORRENTS_CONCURRENCY")
	c.viper.BindEnv("iptorrents.resolvePolicy", envPrefix+"IPTORRENTS_RESOLVE_POLICY")
	c.viper.BindEnv("iptorrents.retries", envPrefix+"IPTORRENTS_RETRIES")

	for key, env := range map[string]string{
		"apiKey":              envPrefix + "API_KEY",
		"iptorrents.rssKey":   envPrefix + "IPTORRENTS_RSS_KEY",
		"iptorrents.password": envPrefix + "IPTORRENTS_PASSWORD",
	} {
		if err := c.bindOrReadFromFile(key, env); err != nil {
			return err
		}
	}
	return nil
}

func (c *AppConfig) watchConfig() {
	c.viper.WatchConfig()
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Msgf("Config file changed: %s", e.Name)

		if err := c.viper.Unmarshal(c.Config); err != nil {
			log.Error().Err(err).Msg("Failed to reload configuration")
			return
		}

		c.applyDynamicChanges()
	})
}

func (c *AppConfig) applyDynamicChanges() {
	c.Config.Version = c.version
	c.ApplyLogConfig()
	c.notifyListeners()
}

// RegisterReloadListener registers a callback that's invoked when the configuration file is reloaded.
func (c *AppConfig) RegisterReloadListener(fn func(*domain.Config)) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *AppConfig) notifyListeners() {
	c.listenersMu.RLock()
	listeners := append([]func(*domain.Config){}, c.listeners...)
	c.listenersMu.RUnlock()

	if len(listeners) == 0 {
		return
	}

	copied := *c.Config
	for _, listener := range listeners {
		listener(&copied)
	}
}

const configTemplate = `# config.toml - Auto-generated on first run

# Hostname / IP of the HTTP API
# Default: "localhost" (or "0.0.0.0" in containers)
host = "{{ .host }}"

# Port of the HTTP API
# Default: 7480
port = {{ .port }}

# Base URL
# Set custom baseUrl eg /ipt/ to serve in subdirectory.
# Optional
#baseUrl = "/ipt/"

# API key required by the HTTP API (X-API-Key header or apikey query parameter)
# Leave empty to disable authentication
#apiKey = ""

# Log file path
# If not defined, logs to stderr
# Optional
#logPath = "log/ipt.log"

# Log rotation
# Maximum log file size in megabytes before rotation
# Default: {{ .logMaxSize }}
#logMaxSize = {{ .logMaxSize }}

# Number of rotated log files to retain (0 keeps all)
# Default: {{ .logMaxBackups }}
#logMaxBackups = {{ .logMaxBackups }}

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "{{ .logLevel }}"

# Prometheus Metrics
# Enable Prometheus metrics on separate port
# Default: false
#metricsEnabled = false

# Metrics server host (bind address for metrics endpoint)
# Default: "127.0.0.1"
#metricsHost = "127.0.0.1"

# Metrics server port
# Default: 9080
#metricsPort = 9080

# Basic authentication for metrics endpoint (optional)
# Format: "username:password" or "user1:pass1,user2:pass2" for multiple users
# Leave empty to disable authentication (default)
#metricsBasicAuthUsers = ""

[iptorrents]
# Site base url, change it for mirrors
# Default: "{{ .siteUrl }}"
#siteUrl = "{{ .siteUrl }}"

# Feed key from the site's RSS page, embedded into every download url
# Required
rssKey = ""

# Numeric user id (cookie "uid")
# Required
uid = ""

# Session password hash (cookie "pass")
# Required
password = ""

# Category name, numeric code or a list of either
# Default: "All"
#category = ["Movie-4K", "TV-x264", 99]

# Request timeout per search term
# Default: "30s"
#timeout = "30s"

# Number of search terms requested in parallel
# Default: 1
#concurrency = 1

# Candidate picked when resolving a search url: "first" or "closest"
# Default: "first"
#resolvePolicy = "first"

# Retries for timed out requests made by the CLI and the HTTP API
# Default: 0
#retries = 0
`

func (c *AppConfig) writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		log.Debug().Msgf("Config file already exists at: %s", path)
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	log.Debug().Msgf("Created config directory: %s", dir)

	data := map[string]any{
		"host":          c.viper.GetString("host"),
		"port":          c.viper.GetInt("port"),
		"logLevel":      c.viper.GetString("logLevel"),
		"logMaxSize":    c.viper.GetInt("logMaxSize"),
		"logMaxBackups": c.viper.GetInt("logMaxBackups"),
		"siteUrl":       c.viper.GetString("iptorrents.siteUrl"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse config template: %w", err)
	}

	// The file holds credentials.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Info().Msgf("Created default config file: %s", path)
	return nil
}

// GetDefaultConfigDir returns the OS-specific config directory
func GetDefaultConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		// Containers mount the config directly at /config
		if xdgConfig == "/config" {
			return xdgConfig
		}
		return filepath.Join(xdgConfig, "ipt")
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "ipt")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Roaming", "ipt")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "ipt")
	}
}

func detectContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if _, err := os.Stat("/dev/.lxc-boot-id"); err == nil {
		return true
	}
	return os.Getpid() == 1
}

func (c *AppConfig) ApplyLogConfig() {
	zerolog.TimeFieldFormat = time.RFC3339

	setLogLevel(c.Config.LogLevel)

	writer := c.baseLogWriter()

	if c.Config.LogPath != "" {
		multiWriter, err := setupLogFile(c.Config.LogPath, writer, c.Config.LogMaxSize, c.Config.LogMaxBackups)
		if err != nil {
			log.Error().Err(err).Msg("Failed to setup log file")
		} else {
			writer = multiWriter
		}
	}

	log.Logger = log.Logger.Output(writer)
}

// SetLogPath overrides the configured log file (used by CLI flags).
func (c *AppConfig) SetLogPath(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	c.Config.LogPath = path
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Logger.Level(lvl)
}

func setupLogFile(path string, base io.Writer, maxSize, maxBackups int) (io.Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if maxSize <= 0 {
		maxSize = 50
	}

	if maxBackups < 0 {
		maxBackups = 0
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}

	return io.MultiWriter(base, rotator), nil
}

func baseLogWriter(version string) io.Writer {
	if isDevBuild(version) {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		writer.PartsOrder = []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName}
		return writer
	}
	return os.Stderr
}

func (c *AppConfig) baseLogWriter() io.Writer {
	return baseLogWriter(c.version)
}

// DefaultLogWriter returns the base log writer for the provided version.
func DefaultLogWriter(version string) io.Writer {
	return baseLogWriter(version)
}

// InitDefaultLogger configures zerolog with the default writer for this version.
// This is used by CLI entry points before a configuration file is loaded.
func InitDefaultLogger(version string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Logger.Output(DefaultLogWriter(version))
}

func isDevBuild(version string) bool {
	v := strings.ToLower(strings.TrimSpace(version))
	return v == "" || v == "dev" || strings.HasSuffix(v, "-dev")
}

// resolveConfigPath determines the actual config file path from the provided directory or file path
func (c *AppConfig) resolveConfigPath(configDirOrPath string) string {
	if strings.HasSuffix(strings.ToLower(configDirOrPath), ".toml") {
		return configDirOrPath
	}

	if info, err := os.Stat(configDirOrPath); err == nil && !info.IsDir() {
		return configDirOrPath
	}

	return filepath.Join(configDirOrPath, "config.toml")
}

// GetConfigDir returns the directory containing the config file
func (c *AppConfig) GetConfigDir() string {
	if c.viper.ConfigFileUsed() != "" {
		return filepath.Dir(c.viper.ConfigFileUsed())
	}
	return GetDefaultConfigDir()
}

func WriteDefaultConfig(path string) error {
	c := &AppConfig{
		viper: viper.New(),
	}

	c.defaults()

	return c.writeDefaultConfig(path)
}

// bindOrReadFromFile reads the value from the file named by envVar+"_FILE"
// when set, and binds envVar otherwise.
func (c *AppConfig) bindOrReadFromFile(viperVar string, envVar string) error {
	envVarFile := envVar + "_FILE"
	if filePath := os.Getenv(envVarFile); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("could not read %s: %w", envVarFile, err)
		}
		c.viper.Set(viperVar, strings.TrimSpace(string(content)))
		return nil
	}
	c.viper.BindEnv(viperVar, envVar)
	return nil
}
