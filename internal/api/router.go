// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

// Package api exposes the batch run over HTTP using the Chi router.
//
// Routes:
//
//	GET /api/v1/health   liveness plus the status of the current run
//	GET /api/v1/report   the current or last run report
//	GET /metrics         Prometheus exposition
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/itemcf/internal/supervisor/services"
)

// ReportSource provides the run report. services.JobService implements it.
type ReportSource interface {
	Report() (services.RunReport, bool)
}

// RouterConfig holds HTTP settings for the router.
type RouterConfig struct {
	// RateLimitRequests per RateLimitWindow and client IP on /api/v1.
	// Zero disables rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Version is reported by the health endpoint.
	Version string
}

// Router wires handlers and middleware.
type Router struct {
	handler *Handler
	config  RouterConfig
}

// NewRouter creates a router serving reports from source.
func NewRouter(source ReportSource, config RouterConfig) *Router {
	return &Router{
		handler: NewHandler(source, config.Version),
		config:  config,
	}
}

// Handler builds the chi handler.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(router.config.RateLimitRequests, router.config.RateLimitWindow))
		r.Use(APISecurityHeaders())

		r.Get("/health", router.handler.Health)
		r.Get("/report", router.handler.Report)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
