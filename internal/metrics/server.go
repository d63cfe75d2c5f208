// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Server struct {
	server *http.Server
}

// ParseBasicAuthUsers parses "user:pass,user2:pass2".
func ParseBasicAuthUsers(raw string) (map[string]string, error) {
	users := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		user, pass, ok := strings.Cut(pair, ":")
		if !ok || user == "" || pass == "" {
			return nil, fmt.Errorf("invalid metrics basic auth entry %q, expected user:password", pair)
		}
		users[user] = pass
	}
	return users, nil
}

// Handler returns the scrape handler, behind basic auth when users are set.
func (m *Metrics) Handler(users map[string]string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if len(users) > 0 {
		r.Use(middleware.BasicAuth("metrics", users))
	}
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}))
	return r
}

func NewMetricsServer(m *Metrics, host string, port int, basicAuthUsers string) (*Server, error) {
	users, err := ParseBasicAuthUsers(basicAuthUsers)
	if err != nil {
		return nil, err
	}

	return &Server{
		server: &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
			Handler:           m.Handler(users),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
