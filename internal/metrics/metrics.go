// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Phase labels for PhaseDuration.
const (
	PhaseLoad         = "load"
	PhaseSplit        = "split"
	PhaseSimilarity   = "similarity"
	PhaseNeighborhood = "neighborhood"
	PhaseScoring      = "scoring"
	PhaseComplete     = "complete"
	PhaseSave         = "save"
)

var (
	// Run Metrics. Similarity over a few thousand items takes tens of seconds.
	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itemcf_phase_duration_seconds",
			Help:    "Duration of each batch phase in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"phase"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itemcf_runs_total",
			Help: "Total number of finished batch runs",
		},
		[]string{"status"},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itemcf_last_run_timestamp",
			Help: "Unix timestamp of the last finished batch run",
		},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itemcf_errors_total",
			Help: "Total number of failed runs by error class",
		},
		[]string{"kind"},
	)

	// Model Metrics
	HitRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itemcf_hit_rate",
			Help: "Hit-rate of the most recent evaluation",
		},
	)

	EvaluationHits = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itemcf_evaluation_hits",
			Help: "Number of hits in the most recent evaluation",
		},
	)

	EvaluationUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itemcf_evaluation_users",
			Help: "Number of users scored by the most recent evaluation",
		},
	)

	SimilarityCells = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itemcf_similarity_cells",
			Help: "Number of cells in the most recent similarity matrix",
		},
	)

	RecommendationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itemcf_recommendations_total",
			Help: "Total number of recommended items produced",
		},
	)

	PredictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itemcf_predictions_total",
			Help: "Total number of blank cells predicted",
		},
	)

	ModelCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itemcf_model_cache_total",
			Help: "Neighborhood store lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itemcf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itemcf_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itemcf_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "itemcf_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordPhase records the duration of one batch phase.
func RecordPhase(phase string, duration time.Duration) {
	PhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordEvaluation publishes the outcome of an evaluation.
func RecordEvaluation(hitRate float64, hits, users int) {
	HitRate.Set(hitRate)
	EvaluationHits.Set(float64(hits))
	EvaluationUsers.Set(float64(users))
}

// RecordSimilarity publishes the size of a similarity matrix.
func RecordSimilarity(cells int64) {
	SimilarityCells.Set(float64(cells))
}

// RecordRecommendations counts recommended items.
func RecordRecommendations(n int) {
	if n > 0 {
		RecommendationsTotal.Add(float64(n))
	}
}

// RecordPredictions counts predicted cells.
func RecordPredictions(n int) {
	if n > 0 {
		PredictionsTotal.Add(float64(n))
	}
}

// RecordModelCache records a neighborhood store lookup.
func RecordModelCache(hit bool) {
	if hit {
		ModelCacheTotal.WithLabelValues("hit").Inc()
	} else {
		ModelCacheTotal.WithLabelValues("miss").Inc()
	}
}

// RecordRun records a finished run. kind is the error class of a failed run
// and is ignored when err is nil.
func RecordRun(at time.Time, kind string, err error) {
	LastRunTimestamp.Set(float64(at.Unix()))
	if err == nil {
		RunsTotal.WithLabelValues("success").Inc()
		return
	}
	RunsTotal.WithLabelValues("failure").Inc()
	RecordError(kind)
}

// RecordError counts a failure by error class.
func RecordError(kind string) {
	if kind == "" {
		kind = "internal"
	}
	ErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
