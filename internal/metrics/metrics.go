// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metrics defines the Prometheus collectors of the adapter and the
// HTTP API, and serves them on a dedicated listener.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector. It implements iptorrents.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	FetchDuration    *prometheus.HistogramVec
	FetchTotal       *prometheus.CounterVec
	RowsParsedTotal  prometheus.Counter
	RowsSkippedTotal prometheus.Counter
	SearchesTotal    *prometheus.CounterVec
	SearchResults    prometheus.Histogram

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ipt_fetch_duration_seconds",
			Help:    "Time spent requesting a search results page",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		FetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ipt_fetch_total",
			Help: "Total number of search page requests by outcome",
		}, []string{"outcome"}),
		RowsParsedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ipt_rows_parsed_total",
			Help: "Total number of result rows converted into records",
		}),
		RowsSkippedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ipt_rows_skipped_total",
			Help: "Total number of result rows skipped because they could not be parsed",
		}),
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ipt_searches_total",
			Help: "Total number of searches by outcome",
		}, []string{"outcome"}),
		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ipt_search_results",
			Help:    "Number of unique records returned per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ipt_http_requests_total",
			Help: "Total number of API requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ipt_http_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveFetch(outcome string, took time.Duration) {
	m.FetchTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.WithLabelValues(outcome).Observe(took.Seconds())
}

func (m *Metrics) ObserveRows(parsed, skipped int) {
	m.RowsParsedTotal.Add(float64(parsed))
	m.RowsSkippedTotal.Add(float64(skipped))
}

func (m *Metrics) ObserveSearch(outcome string, records int) {
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	m.SearchResults.Observe(float64(records))
}

// Middleware records API request counts and latency, labelled by the chi
// route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
