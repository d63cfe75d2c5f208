// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/ipt/internal/api/handlers"
	"github.com/autobrr/ipt/internal/api/middleware"
	"github.com/autobrr/ipt/internal/config"
	"github.com/autobrr/ipt/internal/metrics"
)

type Server struct {
	server  *http.Server
	logger  zerolog.Logger
	config  *config.AppConfig
	version string

	searchService handlers.SearchService
	metrics       *metrics.Metrics
}

type Dependencies struct {
	Config        *config.AppConfig
	Version       string
	SearchService handlers.SearchService
	// Metrics is optional. When set, API requests are counted.
	Metrics *metrics.Metrics
}

func NewServer(deps *Dependencies) *Server {
	s := Server{
		server: &http.Server{
			ReadHeaderTimeout: time.Second * 15,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       180 * time.Second,
		},
		logger:        log.Logger.With().Str("module", "api").Logger(),
		config:        deps.Config,
		version:       deps.Version,
		searchService: deps.SearchService,
		metrics:       deps.Metrics,
	}

	return &s
}

func (s *Server) ListenAndServe() error {
	return s.open(nil)
}

// ListenAndServeReady behaves like ListenAndServe but signals once the listener is active.
func (s *Server) ListenAndServeReady(ready chan<- struct{}) error {
	return s.open(ready)
}

func (s *Server) open(ready chan<- struct{}) error {
	addr := fmt.Sprintf("%s:%d", s.config.Config.Host, s.config.Config.Port)

	var lastErr error
	for _, proto := range []string{"tcp", "tcp4", "tcp6"} {
		err := s.tryToServe(addr, proto, ready)
		if err == nil {
			return nil
		}

		if errors.Is(err, http.ErrServerClosed) {
			return err
		}

		s.logger.Error().Err(err).Str("addr", addr).Str("proto", proto).Msg("Failed to start server")
		lastErr = err
	}

	return lastErr
}

func (s *Server) tryToServe(addr, protocol string, ready chan<- struct{}) error {
	listener, err := net.Listen(protocol, addr)
	if err != nil {
		return err
	}

	host := listener.Addr().String()
	if strings.HasPrefix(host, "0.0.0.0:") || strings.HasPrefix(host, "[::]:") {
		host = strings.Replace(host, "0.0.0.0:", "localhost:", 1)
		host = strings.Replace(host, "[::]:", "localhost:", 1)
	}

	s.logger.Info().
		Str("protocol", protocol).
		Str("addr", listener.Addr().String()).
		Str("base_url", s.config.Config.BaseURL).
		Msgf("Starting API server - Open: http://%s%sapi", host, s.baseURL())

	handler, err := s.Handler()
	if err != nil {
		listener.Close()
		return fmt.Errorf("build API router: %w", err)
	}

	s.server.Handler = handler

	if ready != nil {
		select {
		case ready <- struct{}{}:
		default:
		}
	}

	return s.server.Serve(listener)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// baseURL always starts and ends with a slash.
func (s *Server) baseURL() string {
	base := strings.Trim(s.config.Config.BaseURL, "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}

func (s *Server) Handler() (*chi.Mux, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	compressor, err := httpcompression.DefaultAdapter(
		httpcompression.MinSize(1024),
		httpcompression.GzipCompressionLevel(2),
		httpcompression.Prefer(httpcompression.PreferServer),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create HTTP compression adapter")
	} else {
		r.Use(compressor)
	}

	corsMiddleware := cors.New(cors.Options{
		AllowedMethods:  []string{"HEAD", "OPTIONS", "GET", "POST"},
		AllowedHeaders:  []string{"Accept", "Content-Type", "X-API-Key"},
		AllowOriginFunc: func(origin string) bool { return true },
		MaxAge:          300,
	})
	r.Use(corsMiddleware.Handler)

	healthHandler := handlers.NewHealthHandler(s.version)
	iptHandler := handlers.NewIPTorrentsHandler(s.searchService)

	apiRouter := chi.NewRouter()
	apiRouter.Group(func(r chi.Router) {
		r.Use(middleware.Logger(s.logger))
		if s.metrics != nil {
			r.Use(s.metrics.Middleware)
		}
		r.Use(middleware.APIKey(s.config.Config.APIKey))

		iptHandler.Routes(r)
	})

	r.Get("/health", healthHandler.HandleHealth)
	r.Get(s.baseURL()+"api/openapi.yaml", serveOpenAPISpec)
	r.Mount(s.baseURL()+"api", apiRouter)

	return r, nil
}
