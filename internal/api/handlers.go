// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/itemcf/internal/logging"
	"github.com/tomtom215/itemcf/internal/supervisor/services"
)

// Handler serves the API endpoints.
type Handler struct {
	source    ReportSource
	version   string
	startTime time.Time
}

// NewHandler creates a handler. source may be nil, in which case no run is
// ever reported.
func NewHandler(source ReportSource, version string) *Handler {
	return &Handler{
		source:    source,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status    string  `json:"status"`
	Version   string  `json:"version,omitempty"`
	RunStatus string  `json:"run_status"`
	RunID     string  `json:"run_id,omitempty"`
	Uptime    float64 `json:"uptime_seconds"`
}

// Health reports liveness. A failed run degrades the status but the server
// itself still answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:    "healthy",
		Version:   h.version,
		RunStatus: "pending",
		Uptime:    time.Since(h.startTime).Seconds(),
	}
	if report, ok := h.report(); ok {
		health.RunStatus = report.Status
		health.RunID = report.RunID
		if report.ErrorKind != "" {
			health.Status = "degraded"
		}
	}

	logging.Ctx(r.Context()).Debug().Str("run_status", health.RunStatus).Msg("health check")
	respondSuccess(w, health)
}

// Report returns the current or last run report, or 503 before the first
// run has started.
func (h *Handler) Report(w http.ResponseWriter, _ *http.Request) {
	report, ok := h.report()
	if !ok {
		w.Header().Set("Retry-After", "5")
		respondError(w, http.StatusServiceUnavailable, "RUN_NOT_STARTED", "No run has started yet", nil)
		return
	}
	respondSuccess(w, report)
}

func (h *Handler) report() (services.RunReport, bool) {
	if h.source == nil {
		return services.RunReport{}, false
	}
	return h.source.Report()
}
