// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/ipt/internal/api"
	"github.com/autobrr/ipt/internal/buildinfo"
	"github.com/autobrr/ipt/internal/config"
	"github.com/autobrr/ipt/internal/iptorrents"
	"github.com/autobrr/ipt/internal/metrics"
	"github.com/autobrr/ipt/internal/services/search"
)

func RunServeCommand(flags *globalFlags) *cobra.Command {
	var command = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
	}

	command.Run = func(cmd *cobra.Command, args []string) {
		app := NewApplication(flags.configDir, flags.logPath)
		app.runServer()
	}

	return command
}

type Application struct {
	configDir string
	logPath   string
}

func NewApplication(configDir, logPath string) *Application {
	return &Application{
		configDir: configDir,
		logPath:   logPath,
	}
}

func (app *Application) runServer() {
	cfg, err := config.New(app.configDir, buildinfo.Version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	if app.logPath != "" {
		os.Setenv("IPT__LOG_PATH", app.logPath)
		cfg.SetLogPath(app.logPath)
	}

	cfg.ApplyLogConfig()

	log.Info().Str("version", buildinfo.Version).Msg("Starting ipt")

	settings, err := iptorrents.NewSettings(cfg.Config.IPTorrents)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid iptorrents configuration")
	}

	var (
		metricsCollector *metrics.Metrics
		adapterOpts      []iptorrents.Option
	)
	if cfg.Config.MetricsEnabled {
		metricsCollector = metrics.New()
		adapterOpts = append(adapterOpts, iptorrents.WithMetrics(metricsCollector))
	}

	searchService := search.NewService(settings, search.WithAdapterOptions(adapterOpts...))
	cfg.RegisterReloadListener(searchService.Reload)

	httpServer := api.NewServer(&api.Dependencies{
		Config:        cfg,
		Version:       buildinfo.Version,
		SearchService: searchService,
		Metrics:       metricsCollector,
	})

	errorChannel := make(chan error, 2)
	serverReady := make(chan struct{}, 1)
	go func() {
		if err := httpServer.ListenAndServeReady(serverReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChannel <- err
		}
	}()

	select {
	case <-serverReady:
	case err := <-errorChannel:
		log.Fatal().Err(err).Msg("failed to start HTTP server")
	}

	var metricsServer *metrics.Server
	if metricsCollector != nil {
		metricsServer, err = metrics.NewMetricsServer(
			metricsCollector,
			cfg.Config.MetricsHost,
			cfg.Config.MetricsPort,
			cfg.Config.MetricsBasicAuthUsers,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid metrics configuration")
		}

		go func() {
			if err := metricsServer.ListenAndServe(); err != nil {
				errorChannel <- err
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Msgf("got signal %v, shutting down server", sig.String())
	case err := <-errorChannel:
		log.Error().Err(err).Msg("got unexpected error from server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("got error during metrics server shutdown")
		}
	}

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("got error during graceful http shutdown")
		os.Exit(1)
	}

	os.Exit(0)
}
